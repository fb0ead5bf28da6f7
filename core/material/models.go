package material

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

type Material struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Level      string    `json:"level"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	UploadDate time.Time `json:"upload_date"` // UTC
}

// ListingRecord maps a material to a record that is never submitted: materials have no visibility window.
func (m Material) ListingRecord() listing.Record {
	return listing.Record{
		ID:        m.ID,
		CreatedAt: m.UploadDate,
		Level:     m.Level,
		Subject:   m.Subject,
		FileType:  m.FileType,
		Filename:  m.Filename,
	}
}

// NewMaterial contains information needed to upload a new Material.
type NewMaterial struct {
	Title   string       `form:"title" validate:"required"`
	Subject string       `form:"subject" validate:"notblank"`
	Level   string       `form:"level" validate:"required,level"`
	File    *core.Upload `form:"-"`
}

func (nm *NewMaterial) Validate(ctx context.Context, validate *validator.Validate, subjects SubjectChecker) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Level = core.CleanString(nm.Level)
	if nm.Level == "" {
		nm.Level = core.Level100
	}
	if nm.Title == "" && nm.File != nil {
		nm.Title = nm.File.Filename
	}

	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.File == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: core.ErrEmptyFile.Error()})
	}
	ok, err := subjects.SubjectExists(ctx, nm.Subject)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "unknown subject"})
	}
	return nil
}
