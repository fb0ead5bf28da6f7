package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
)

type notificationRepository struct {
	db *table[notification.Notification]
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.insert(notif.ID, notif)
	return notif, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter listing.Filter) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	level := filter.StoreSide().Level
	return repo.db.query(func(n notification.Notification) bool {
		return level == "" || n.Level == level
	}), nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if notif, ok := repo.db.get(id); ok {
		return notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotificationSubmission(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	notif, ok := repo.db.rows[id]
	if !ok {
		return notification.ErrNotFound
	}
	notif.Submitted = true
	notif.SubmissionDate = &at
	return nil
}

func (repo *notificationRepository) DeleteNotificationsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.delete(ids...)
	return nil
}
