package assignment

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

// assignment and answer files may only be PDFs or pictures
var allowedFileMimes = []string{"application/pdf", "image/jpeg", "image/png"}

type File struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

type Assignment struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Subject        string     `json:"subject"`
	Level          string     `json:"level"`
	Deadline       time.Time  `json:"deadline"`
	File           File       `json:"file"`
	Answer         *File      `json:"answer_file"`
	Date           time.Time  `json:"date"` // UTC
	Submitted      bool       `json:"submitted"`
	SubmissionDate *time.Time `json:"submission_date,omitempty"`
	NotificationID string     `json:"notification_id,omitempty"`
}

func (a Assignment) ListingRecord() listing.Record {
	return listing.Record{
		ID:          a.ID,
		CreatedAt:   a.Date,
		Level:       a.Level,
		Subject:     a.Subject,
		FileType:    a.File.Type,
		Filename:    a.File.Filename,
		Submitted:   a.Submitted,
		SubmittedAt: a.SubmissionDate,
	}
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string       `form:"title" validate:"required,min=5"`
	Description string       `form:"description" validate:"required,min=10"`
	Subject     string       `form:"subject" validate:"notblank"`
	Level       string       `form:"level" validate:"required,level"`
	Deadline    time.Time    `form:"deadline" validate:"required"`
	File        *core.Upload `form:"-"`
	Answer      *core.Upload `form:"-"`
}

func (na *NewAssignment) Validate(ctx context.Context, validate *validator.Validate, subjects SubjectChecker) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Subject = core.CleanString(na.Subject)
	na.Level = core.CleanString(na.Level)
	if na.Level == "" {
		na.Level = core.Level100
	}

	if err := validate.Struct(na); err != nil {
		return err
	}
	if err := checkFile("file", na.File, true); err != nil {
		return err
	}
	if err := checkFile("answer_file", na.Answer, false); err != nil {
		return err
	}
	return checkSubject(ctx, subjects, na.Subject)
}

func checkSubject(ctx context.Context, subjects SubjectChecker, name string) error {
	ok, err := subjects.SubjectExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "unknown subject"})
	}
	return nil
}

func checkFile(field string, up *core.Upload, required bool) error {
	if up == nil {
		if required {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: core.ErrEmptyFile.Error()})
		}
		return nil
	}
	if !up.Is(allowedFileMimes...) {
		return core.NewValidationError(nil, core.FieldError{Field: field, Error: "only PDF and image files are allowed"})
	}
	return nil
}
