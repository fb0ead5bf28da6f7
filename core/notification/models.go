package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

type Notification struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Date           time.Time  `json:"date"` // UTC
	EventDate      *time.Time `json:"event_date,omitempty"`
	Level          string     `json:"level"`
	Submitted      bool       `json:"submitted"`
	SubmissionDate *time.Time `json:"submission_date,omitempty"`
}

func (n Notification) ListingRecord() listing.Record {
	return listing.Record{
		ID:          n.ID,
		CreatedAt:   n.Date,
		Level:       n.Level,
		Submitted:   n.Submitted,
		SubmittedAt: n.SubmissionDate,
	}
}

// NewNotification contains information needed to publish a new Notification.
type NewNotification struct {
	Title       string     `json:"title" validate:"required,min=5"`
	Description string     `json:"description" validate:"required,min=10"`
	EventDate   *time.Time `json:"event_date"`
	Level       string     `json:"level" validate:"required,level"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Description = core.CleanString(nn.Description)
	nn.Level = core.CleanString(nn.Level)
	if nn.Level == "" {
		nn.Level = core.Level100
	}
	return validate.Struct(nn)
}
