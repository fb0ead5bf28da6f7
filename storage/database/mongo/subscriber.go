package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/deptportal/core/subscriber"
)

type subscriberDoc struct {
	Token     string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
}

type subscriberRepository struct {
	coll *mongo.Collection
}

var _ subscriber.Repository = (*subscriberRepository)(nil) // interface compliance check

func NewSubscriberRepository(db *DB) subscriber.Repository {
	return &subscriberRepository{coll: db.collection(subscribersCollection)}
}

func (repo subscriberRepository) SaveSubscriber(ctx context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	var doc subscriberDoc
	err := repo.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": sub.Token},
		bson.M{"$setOnInsert": bson.M{"created_at": sub.CreatedAt.UTC()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "saving subscriber")
	}
	return subscriber.Subscriber{Token: doc.Token, CreatedAt: doc.CreatedAt.UTC()}, nil
}

func (repo subscriberRepository) QueryAllSubscribers(ctx context.Context) ([]subscriber.Subscriber, error) {
	docs, err := findAll[subscriberDoc](ctx, repo.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying subscribers")
	}
	subs := make([]subscriber.Subscriber, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, subscriber.Subscriber{Token: doc.Token, CreatedAt: doc.CreatedAt.UTC()})
	}
	return subs, nil
}

func (repo subscriberRepository) DeleteSubscriber(ctx context.Context, token string) error {
	_, err := repo.coll.DeleteOne(ctx, bson.M{"_id": token})
	return errors.Wrap(err, "deleting subscriber")
}
