// Package mongorepos implements the repositories on MongoDB. Materials are
// paged by keyset cursors on (upload_date, _id).
package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/deptportal/core"
)

// Collections
const (
	notificationsCollection = "notifications"
	assignmentsCollection   = "assignments"
	materialsCollection     = "course_materials"
	subjectsCollection      = "subjects"
	subscribersCollection   = "subscribers"
)

// DB has no multi-document transactions: writes in Transact run in order.
type DB struct {
	core.SequencedTransactor

	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the configured server and makes sure the indexes exist.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, conf.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongo")
	}

	db := &DB{client: client, db: client.Database(conf.Mongo.Name)}
	if err = db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		notificationsCollection: {
			{Keys: bson.D{{Key: "level", Value: 1}, {Key: "date", Value: -1}}},
		},
		assignmentsCollection: {
			{Keys: bson.D{{Key: "level", Value: 1}, {Key: "subject", Value: 1}, {Key: "date", Value: -1}}},
		},
		materialsCollection: {
			{Keys: bson.D{{Key: "upload_date", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "level", Value: 1}, {Key: "subject", Value: 1}, {Key: "file_type", Value: 1}, {Key: "upload_date", Value: -1}, {Key: "_id", Value: -1}}},
		},
		subjectsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := db.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// trapNoDocsErr maps mongo.ErrNoDocuments to notFound
func trapNoDocsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == mongo.ErrNoDocuments {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// storeSide builds the equality filter on the given fields, skipping empty values.
func storeSide(fields map[string]string) bson.M {
	filter := bson.M{}
	for k, v := range fields {
		if v != "" {
			filter[k] = v
		}
	}
	return filter
}

func deleteByID(ctx context.Context, coll *mongo.Collection, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "deleting from "+coll.Name())
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
