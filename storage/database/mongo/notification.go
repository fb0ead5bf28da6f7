package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
)

type notificationDoc struct {
	ID             string     `bson:"_id"`
	Title          string     `bson:"title"`
	Description    string     `bson:"description"`
	Date           time.Time  `bson:"date"`
	EventDate      *time.Time `bson:"event_date,omitempty"`
	Level          string     `bson:"level"`
	Submitted      bool       `bson:"submitted"`
	SubmissionDate *time.Time `bson:"submission_date,omitempty"`
}

type notificationRepository struct {
	coll *mongo.Collection
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{coll: db.collection(notificationsCollection)}
}

func (doc notificationDoc) notification() notification.Notification {
	return notification.Notification{
		ID:             doc.ID,
		Title:          doc.Title,
		Description:    doc.Description,
		Date:           doc.Date.UTC(),
		EventDate:      utcPtr(doc.EventDate),
		Level:          doc.Level,
		Submitted:      doc.Submitted,
		SubmissionDate: utcPtr(doc.SubmissionDate),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func (repo notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	_, err := repo.coll.InsertOne(ctx, notificationDoc{
		ID:             notif.ID,
		Title:          notif.Title,
		Description:    notif.Description,
		Date:           notif.Date.UTC(),
		EventDate:      notif.EventDate,
		Level:          notif.Level,
		Submitted:      notif.Submitted,
		SubmissionDate: notif.SubmissionDate,
	})
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) QueryNotifications(ctx context.Context, filter listing.Filter) ([]notification.Notification, error) {
	f := filter.StoreSide()
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	docs, err := findAll[notificationDoc](ctx, repo.coll, storeSide(map[string]string{"level": f.Level}), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(docs))
	for _, doc := range docs {
		notifs = append(notifs, doc.notification())
	}
	return notifs, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var doc notificationDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return notification.Notification{}, trapNoDocsErr(err, notification.ErrNotFound, "finding notification by ID")
	}
	return doc.notification(), nil
}

func (repo notificationRepository) UpdateNotificationSubmission(ctx context.Context, id string, at time.Time) error {
	res, err := repo.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"submitted": true, "submission_date": at.UTC()}})
	if err != nil {
		return errors.Wrap(err, "updating notification submission")
	}
	if res.MatchedCount == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) DeleteNotificationsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.coll, ids)
}
