package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// File types
const (
	FileTypePDF        = "pdf"
	FileTypeImage      = "image"
	FileTypeVideo      = "video"
	FileTypePowerpoint = "powerpoint"
)

var FileTypes = []string{FileTypePDF, FileTypeImage, FileTypeVideo, FileTypePowerpoint}

var (
	ErrEmptyFile    = errors.New("file is required")
	ErrFileTooLarge = errors.New("file is too large")
)

// FileStore keeps uploaded files and hands back a URL they can be fetched from.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// Upload is an uploaded file held in memory, with its sniffed content type.
type Upload struct {
	Filename    string
	ContentType string
	FileType    string
	Data        []byte
}

// NewUpload reads r fully (at most maxSize bytes when maxSize > 0) and detects its type
// from the content, not from the client supplied header.
func NewUpload(filename string, r io.Reader, maxSize int64) (Upload, error) {
	var lr io.Reader = r
	if maxSize > 0 {
		lr = io.LimitReader(r, maxSize+1)
	}
	data, err := io.ReadAll(lr)
	if err != nil {
		return Upload{}, errors.Wrap(err, "reading upload")
	}
	if len(data) == 0 {
		return Upload{}, ErrEmptyFile
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return Upload{}, ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	return Upload{
		Filename:    path.Base(CleanString(filename)),
		ContentType: mtype.String(),
		FileType:    FileTypeOf(mtype.String()),
		Data:        data,
	}, nil
}

func (u Upload) Reader() io.Reader { return bytes.NewReader(u.Data) }
func (u Upload) Size() int64       { return int64(len(u.Data)) }

// Is reports whether the upload's content type is one of mimes (parameters ignored).
func (u Upload) Is(mimes ...string) bool {
	ct := strings.TrimSpace(strings.SplitN(u.ContentType, ";", 2)[0])
	for _, m := range mimes {
		if ct == m {
			return true
		}
	}
	return false
}

// Key is a unique storage key for the upload under dir.
func (u Upload) Key(dir string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, u.Filename)
	return fmt.Sprintf("%s/%s-%s", dir, uuid.NewString(), name)
}

// FileTypeOf maps a content type to one of FileTypes. Unknown types are treated as documents.
func FileTypeOf(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return FileTypeImage
	case strings.HasPrefix(ct, "video/"):
		return FileTypeVideo
	case strings.Contains(ct, "powerpoint"), strings.Contains(ct, "presentationml"):
		return FileTypePowerpoint
	default:
		return FileTypePDF
	}
}
