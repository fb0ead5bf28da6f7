// Package download streams stored files back to clients under a readable filename.
package download

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

const defaultContentType = "application/octet-stream"

// ErrUpstream means the file store did not hand the file back.
var ErrUpstream = errors.New("could not fetch file")

type File struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64 // -1 when unknown
	Filename    string
}

// Disposition is the Content-Disposition header value for the file. Non-ASCII
// filenames are sent as an RFC 2231 filename* parameter.
func (f *File) Disposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": f.Filename})
}

type Proxy struct {
	client *http.Client
	logger core.Logger
}

func NewProxy(timeout time.Duration, logger core.Logger) *Proxy {
	return &Proxy{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch opens the file at url. The caller must close File.Body.
func (p *Proxy) Fetch(ctx context.Context, url, filename string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("fetching stored file", errors.Wrapf(err, "GET %s", url))
		return nil, ErrUpstream
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		p.logger.Error("fetching stored file", errors.Errorf("GET %s: status %d", url, resp.StatusCode))
		return nil, ErrUpstream
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	return &File{
		Body:        resp.Body,
		ContentType: ct,
		Size:        resp.ContentLength,
		Filename:    filename,
	}, nil
}

// ext returns the extension of filename without the dot, or "".
func ext(filename string) string {
	return strings.TrimPrefix(path.Ext(filename), ".")
}

// AssignmentFilename names an assignment file after the assignment: "<title>.<ext>",
// or just the title when the stored file has no extension.
func AssignmentFilename(title, filename string) string {
	if e := ext(filename); e != "" {
		return title + "." + e
	}
	return title
}

// AnswerFilename names an answer file "<title>_answer.<ext>". Without a stored
// extension, PDFs get "pdf" and anything else "jpg".
func AnswerFilename(title, filename, fileType string) string {
	e := ext(filename)
	if e == "" {
		e = "jpg"
		if fileType == core.FileTypePDF {
			e = "pdf"
		}
	}
	return title + "_answer." + e
}
