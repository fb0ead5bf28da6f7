package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
)

type notificationRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Description    string    `db:"description"`
	Date           time.Time `db:"date"`
	EventDate      null.Time `db:"event_date"`
	Level          string    `db:"level"`
	Submitted      bool      `db:"submitted"`
	SubmissionDate null.Time `db:"submission_date"`
}

const notificationColumns = "id, title, description, date, event_date, level, submitted, submission_date"

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) toRow(n notification.Notification) notificationRow {
	return notificationRow{
		ID:             n.ID,
		Title:          n.Title,
		Description:    n.Description,
		Date:           n.Date.UTC(),
		EventDate:      null.TimeFromPtr(n.EventDate),
		Level:          n.Level,
		Submitted:      n.Submitted,
		SubmissionDate: null.TimeFromPtr(n.SubmissionDate),
	}
}

func (repo notificationRepository) fromRow(row notificationRow) notification.Notification {
	return notification.Notification{
		ID:             row.ID,
		Title:          row.Title,
		Description:    row.Description,
		Date:           row.Date.UTC(),
		EventDate:      utcPtr(row.EventDate),
		Level:          row.Level,
		Submitted:      row.Submitted,
		SubmissionDate: utcPtr(row.SubmissionDate),
	}
}

func utcPtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func (repo notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	_, err := repo.db.exec(ctx).NamedExecContext(ctx,
		"INSERT INTO notifications ("+notificationColumns+") VALUES "+
			"(:id, :title, :description, :date, :event_date, :level, :submitted, :submission_date)",
		repo.toRow(notif))
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, filter listing.Filter) ([]notification.Notification, error) {
	f := filter.StoreSide()
	var w where
	w.eq("level", f.Level)

	ext := repo.db.exec(ctx)
	var rows []notificationRow
	query := ext.Rebind("SELECT " + notificationColumns + " FROM notifications" + w.String() + " ORDER BY date DESC, id DESC")
	if err := ext.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, repo.fromRow(row))
	}
	return notifs, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	ext := repo.db.exec(ctx)
	var row notificationRow
	query := ext.Rebind("SELECT " + notificationColumns + " FROM notifications WHERE id = ?")
	if err := ext.GetContext(ctx, &row, query, id); err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "finding notification by ID")
	}
	return repo.fromRow(row), nil
}

func (repo notificationRepository) UpdateNotificationSubmission(ctx context.Context, id string, at time.Time) error {
	ext := repo.db.exec(ctx)
	res, err := ext.ExecContext(ctx,
		ext.Rebind("UPDATE notifications SET submitted = TRUE, submission_date = ? WHERE id = ?"), at.UTC(), id)
	return checkAffected(res, err, notification.ErrNotFound, "updating notification submission")
}

func (repo notificationRepository) DeleteNotificationsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.db.exec(ctx), "notifications", ids)
}
