// Package listing decides which records a viewer sees and in what page/order.
// It is shared by the notifications, assignments and materials lists and never
// holds any record collection itself: records come in as a parameter and new
// slices go out.
package listing

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// DefaultWindow is how long a submitted record stays listed after submission.
const DefaultWindow = 24 * time.Hour

// All is the "no constraint" sentinel accepted by every categorical filter.
const All = "All"

var (
	// ErrInvalidRecordState means a record's submission fields are inconsistent.
	ErrInvalidRecordState = errors.New("invalid record state")

	// ErrInvalidPageRequest means pageNumber < 1 or pageSize < 1.
	ErrInvalidPageRequest = errors.New("invalid page request")
)

// Record is the listing view of a notification, assignment or material.
type Record struct {
	ID          string
	CreatedAt   time.Time
	Level       string
	Subject     string
	FileType    string
	Filename    string
	Submitted   bool
	SubmittedAt *time.Time
}

// Item is anything that can be listed.
type Item interface {
	ListingRecord() Record
}

func (r Record) ListingRecord() Record { return r }

// Validate checks that SubmittedAt is set iff Submitted is, and never precedes CreatedAt.
func (r Record) Validate() error {
	switch {
	case r.Submitted && r.SubmittedAt == nil:
		return &RecordStateError{ID: r.ID, Reason: "is submitted but has no submission date"}
	case !r.Submitted && r.SubmittedAt != nil:
		return &RecordStateError{ID: r.ID, Reason: "has a submission date but is not submitted"}
	case r.Submitted && r.SubmittedAt.Before(r.CreatedAt):
		return &RecordStateError{ID: r.ID, Reason: "was submitted before it was created"}
	}
	return nil
}

// VisibleAt reports whether the record is listed at `now`. The window is a closed interval.
func (r Record) VisibleAt(now time.Time, window time.Duration) bool {
	if !r.Submitted {
		return true
	}
	return now.Sub(*r.SubmittedAt) <= window
}

// RecordStateError carries the offending record; it unwraps to ErrInvalidRecordState.
type RecordStateError struct {
	ID     string
	Reason string
}

func (err *RecordStateError) Error() string {
	return fmt.Sprintf("%v: record %q %s", ErrInvalidRecordState, err.ID, err.Reason)
}

func (err *RecordStateError) Unwrap() error { return ErrInvalidRecordState }
