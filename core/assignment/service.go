package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
)

var (
	ErrNotFound       = core.NewNotFoundError("assignment")
	ErrAnswerNotFound = core.NewNotFoundError("answer file")
)

// deadlineLayout matches the deadline format used in assignment notifications, e.g. "Mar 1, 2024".
const deadlineLayout = "Jan 2, 2006"

type (
	// Repository filters on level and subject at most; every other constraint is applied in memory.
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		QueryAssignments(ctx context.Context, filter listing.Filter) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		UpdateAssignmentSubmission(ctx context.Context, id string, at time.Time) error
		UpdateAssignmentAnswer(ctx context.Context, id string, answer File) error
		DeleteAssignmentsByID(ctx context.Context, ids ...string) error
	}

	SubjectChecker interface {
		SubjectExists(ctx context.Context, name string) (bool, error)
	}

	Service struct {
		repo     Repository
		tx       core.Transactor
		notifSvc *notification.Service
		files    core.FileStore
		logger   core.Logger
		conf     core.ListingConfig
		now      core.NowFunc
	}
)

func NewService(
	repo Repository,
	tx core.Transactor,
	notifSvc *notification.Service,
	files core.FileStore,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		notifSvc: notifSvc,
		files:    files,
		logger:   logger,
		conf:     conf.Listing,
		now:      core.UTCNow,
	}
}

// SetNowFunc replaces the clock used for creation and submission dates and the visibility window.
func (svc *Service) SetNowFunc(now core.NowFunc) { svc.now = now }

func (svc *Service) saveFile(ctx context.Context, up *core.Upload) (File, error) {
	key := up.Key("assignments")
	url, err := svc.files.Save(ctx, key, up.ContentType, up.Reader(), up.Size())
	if err != nil {
		return File{}, errors.Wrap(err, "saving file")
	}
	return File{URL: url, Type: up.FileType, Filename: up.Filename}, nil
}

// Create uploads the assignment files, then stores the assignment together with
// the notification announcing it. Subscribers are alerted once both are stored.
func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	file, err := svc.saveFile(ctx, na.File)
	if err != nil {
		return Assignment{}, err
	}
	var answer *File
	if na.Answer != nil {
		f, err := svc.saveFile(ctx, na.Answer)
		if err != nil {
			return Assignment{}, errors.Wrap(err, "answer")
		}
		answer = &f
	}

	var asg Assignment
	var notif notification.Notification
	err = svc.tx.Transact(ctx, func(ctx context.Context) error {
		notif, err = svc.notifSvc.Add(ctx, notification.Notification{
			Title: "New Assignment: " + na.Title,
			Description: fmt.Sprintf(
				"%s. Deadline: %s. View details in the Assignments section.",
				na.Description, na.Deadline.Format(deadlineLayout),
			),
			Level: na.Level,
		})
		if err != nil {
			return err
		}

		asg, err = svc.repo.CreateAssignment(ctx, Assignment{
			ID:             "asg-" + uuid.NewString(),
			Title:          na.Title,
			Description:    na.Description,
			Subject:        na.Subject,
			Level:          na.Level,
			Deadline:       na.Deadline.UTC(),
			File:           file,
			Answer:         answer,
			Date:           svc.now(),
			NotificationID: notif.ID,
		})
		return errors.Wrap(err, "creating assignment")
	})
	if err != nil {
		return Assignment{}, err
	}

	svc.notifSvc.Announce(ctx, notif)
	return asg, nil
}

// Query returns one page of the assignments visible now.
func (svc *Service) Query(ctx context.Context, filter listing.Filter, page int) (listing.Page[Assignment], error) {
	req := listing.PageRequest{Number: page, Size: svc.conf.AssignmentsPageSize}
	if err := req.Validate(); err != nil {
		return listing.Page[Assignment]{}, err
	}
	asgs, err := svc.repo.QueryAssignments(ctx, filter.StoreSide())
	if err != nil {
		return listing.Page[Assignment]{}, errors.Wrap(err, "querying assignments")
	}
	return listing.VisibleAndPaged(asgs, filter, req, svc.now(), svc.conf.VisibilityWindow)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

// Submit marks the assignment, then its notification, as submitted at the same instant.
// Submitting again restarts the visibility window of both.
func (svc *Service) Submit(ctx context.Context, id string) (Assignment, error) {
	at := svc.now()
	err := svc.tx.Transact(ctx, func(ctx context.Context) error {
		asg, err := svc.repo.GetAssignmentByID(ctx, id)
		if err != nil {
			return err
		}
		if err = svc.repo.UpdateAssignmentSubmission(ctx, id, at); err != nil {
			return errors.Wrap(err, "updating assignment submission")
		}
		if asg.NotificationID == "" {
			return nil
		}
		err = svc.notifSvc.MarkSubmitted(ctx, asg.NotificationID, at)
		if errors.Cause(err) == notification.ErrNotFound {
			svc.logger.Warn("submitted assignment has no notification", map[string]interface{}{
				"assignment_id":   asg.ID,
				"notification_id": asg.NotificationID,
			})
			return nil
		}
		return errors.Wrap(err, "updating notification submission")
	})
	if err != nil {
		return Assignment{}, err
	}
	return svc.repo.GetAssignmentByID(ctx, id)
}

// UploadAnswer attaches (or replaces) the answer file of an assignment.
func (svc *Service) UploadAnswer(ctx context.Context, id string, up *core.Upload) (Assignment, error) {
	if err := checkFile("answer_file", up, true); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.repo.GetAssignmentByID(ctx, id); err != nil {
		return Assignment{}, err
	}
	answer, err := svc.saveFile(ctx, up)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "answer")
	}
	if err = svc.repo.UpdateAssignmentAnswer(ctx, id, answer); err != nil {
		return Assignment{}, errors.Wrap(err, "updating answer file")
	}
	return svc.repo.GetAssignmentByID(ctx, id)
}

// Delete removes the assignment and the notification announcing it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	asg, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	return svc.tx.Transact(ctx, func(ctx context.Context) error {
		if asg.NotificationID != "" {
			if err := svc.notifSvc.Delete(ctx, asg.NotificationID); err != nil {
				return errors.Wrap(err, "deleting notification")
			}
		}
		return errors.Wrap(svc.repo.DeleteAssignmentsByID(ctx, id), "deleting assignment")
	})
}
