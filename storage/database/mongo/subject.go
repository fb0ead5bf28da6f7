package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
)

type subjectDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type subjectRepository struct {
	coll *mongo.Collection
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{coll: db.collection(subjectsCollection)}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	_, err := repo.coll.InsertOne(ctx, subjectDoc(subj))
	if mongo.IsDuplicateKeyError(err) {
		return subject.Subject{}, subject.ErrNameExists
	}
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context, orderings ...core.DBOrdering) ([]subject.Subject, error) {
	sort := bson.D{}
	for _, ord := range core.AllowedOrderings(orderings, subject.OrderingFields...) {
		field := ord.Field
		if field == "id" {
			field = "_id"
		}
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "name", Value: 1}}
	}

	docs, err := findAll[subjectDoc](ctx, repo.coll, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjs := make([]subject.Subject, 0, len(docs))
	for _, doc := range docs {
		subjs = append(subjs, subject.Subject(doc))
	}
	return subjs, nil
}

func (repo subjectRepository) GetSubjectByName(ctx context.Context, name string) (subject.Subject, error) {
	var doc subjectDoc
	if err := repo.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc); err != nil {
		return subject.Subject{}, trapNoDocsErr(err, subject.ErrNotFound, "finding subject by name")
	}
	return subject.Subject(doc), nil
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.coll, ids)
}
