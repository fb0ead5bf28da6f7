package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

var ErrNotFound = core.NewNotFoundError("notification")

type (
	// Repository filters on level at most; every other constraint is applied in memory.
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		QueryNotifications(ctx context.Context, filter listing.Filter) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		UpdateNotificationSubmission(ctx context.Context, id string, at time.Time) error
		DeleteNotificationsByID(ctx context.Context, ids ...string) error
	}

	// TokenSource lists the push subscribers to alert.
	TokenSource interface {
		Tokens(ctx context.Context) ([]string, error)
	}

	Service struct {
		repo    Repository
		tokens  TokenSource
		pushSvc core.PushService
		logger  core.Logger
		conf    core.ListingConfig
		now     core.NowFunc
	}
)

func NewService(repo Repository, tokens TokenSource, pushSvc core.PushService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		pushSvc: pushSvc,
		logger:  logger,
		conf:    conf.Listing,
		now:     core.UTCNow,
	}
}

// SetNowFunc replaces the clock used for creation dates and the visibility window.
func (svc *Service) SetNowFunc(now core.NowFunc) { svc.now = now }

func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	notif, err := svc.Add(ctx, Notification{
		Title:       nn.Title,
		Description: nn.Description,
		EventDate:   nn.EventDate,
		Level:       nn.Level,
	})
	if err != nil {
		return Notification{}, err
	}
	svc.Announce(ctx, notif)
	return notif, nil
}

// Add stores notif as a new, unsubmitted notification without alerting anyone.
func (svc *Service) Add(ctx context.Context, notif Notification) (Notification, error) {
	notif.ID = "notif-" + uuid.NewString()
	notif.Date = svc.now()
	notif.Submitted = false
	notif.SubmissionDate = nil
	if notif.Level == "" {
		notif.Level = core.Level100
	}
	if notif.EventDate != nil {
		utc := notif.EventDate.UTC()
		notif.EventDate = &utc
	}
	notif, err := svc.repo.CreateNotification(ctx, notif)
	return notif, errors.Wrap(err, "creating notification")
}

// Announce pushes notif to every subscriber. Failures are logged, never returned:
// the notification exists whether or not the alert went out.
func (svc *Service) Announce(ctx context.Context, notif Notification) {
	tokens, err := svc.tokens.Tokens(ctx)
	if err != nil {
		svc.logger.Error("listing push subscribers", errors.Wrap(err, "listing push subscribers"))
		return
	}
	if len(tokens) == 0 {
		return
	}
	svc.pushSvc.SendMessages(ctx, &core.PushMessage{
		Tokens: tokens,
		Title:  notif.Title,
		Body:   notif.Description,
		Link:   "/notifications",
		Data:   map[string]string{"notification_id": notif.ID, "level": notif.Level},
	})
}

// Query returns one page of the notifications visible now. Notifications only carry
// a level, so the other filter fields are ignored.
func (svc *Service) Query(ctx context.Context, filter listing.Filter, page int) (listing.Page[Notification], error) {
	filter = listing.Filter{Level: filter.Level}
	req := listing.PageRequest{Number: page, Size: svc.conf.NotificationsPageSize}
	if err := req.Validate(); err != nil {
		return listing.Page[Notification]{}, err
	}
	notifs, err := svc.repo.QueryNotifications(ctx, filter.StoreSide())
	if err != nil {
		return listing.Page[Notification]{}, errors.Wrap(err, "querying notifications")
	}
	return listing.VisibleAndPaged(notifs, filter, req, svc.now(), svc.conf.VisibilityWindow)
}

// Latest returns the most recent visible notifications of a level.
func (svc *Service) Latest(ctx context.Context, level string) ([]Notification, error) {
	filter := listing.Filter{Level: level}
	req := listing.PageRequest{Number: 1, Size: svc.conf.LatestNotifications}
	notifs, err := svc.repo.QueryNotifications(ctx, filter.StoreSide())
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	page, err := listing.VisibleAndPaged(notifs, filter, req, svc.now(), svc.conf.VisibilityWindow)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotificationByID(ctx, id)
}

// MarkSubmitted flags the notification as submitted at `at`. A resubmission moves `at` forward.
func (svc *Service) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	return svc.repo.UpdateNotificationSubmission(ctx, id, at.UTC())
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteNotificationsByID(ctx, ids...)
}
