package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/listing"
)

type fileDoc struct {
	URL      string `bson:"url"`
	Type     string `bson:"type"`
	Filename string `bson:"filename"`
}

type assignmentDoc struct {
	ID             string     `bson:"_id"`
	Title          string     `bson:"title"`
	Description    string     `bson:"description"`
	Subject        string     `bson:"subject"`
	Level          string     `bson:"level"`
	Deadline       time.Time  `bson:"deadline"`
	File           fileDoc    `bson:"file"`
	Answer         *fileDoc   `bson:"answer_file,omitempty"`
	Date           time.Time  `bson:"date"`
	Submitted      bool       `bson:"submitted"`
	SubmissionDate *time.Time `bson:"submission_date,omitempty"`
	NotificationID string     `bson:"notification_id,omitempty"`
}

type assignmentRepository struct {
	coll *mongo.Collection
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{coll: db.collection(assignmentsCollection)}
}

func (doc assignmentDoc) assignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:             doc.ID,
		Title:          doc.Title,
		Description:    doc.Description,
		Subject:        doc.Subject,
		Level:          doc.Level,
		Deadline:       doc.Deadline.UTC(),
		File:           assignment.File(doc.File),
		Date:           doc.Date.UTC(),
		Submitted:      doc.Submitted,
		SubmissionDate: utcPtr(doc.SubmissionDate),
		NotificationID: doc.NotificationID,
	}
	if doc.Answer != nil {
		answer := assignment.File(*doc.Answer)
		a.Answer = &answer
	}
	return a
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	doc := assignmentDoc{
		ID:             asg.ID,
		Title:          asg.Title,
		Description:    asg.Description,
		Subject:        asg.Subject,
		Level:          asg.Level,
		Deadline:       asg.Deadline.UTC(),
		File:           fileDoc(asg.File),
		Date:           asg.Date.UTC(),
		Submitted:      asg.Submitted,
		SubmissionDate: asg.SubmissionDate,
		NotificationID: asg.NotificationID,
	}
	if asg.Answer != nil {
		answer := fileDoc(*asg.Answer)
		doc.Answer = &answer
	}
	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter listing.Filter) ([]assignment.Assignment, error) {
	f := filter.StoreSide()
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	docs, err := findAll[assignmentDoc](ctx, repo.coll, storeSide(map[string]string{"level": f.Level, "subject": f.Subject}), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(docs))
	for _, doc := range docs {
		asgs = append(asgs, doc.assignment())
	}
	return asgs, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var doc assignmentDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return assignment.Assignment{}, trapNoDocsErr(err, assignment.ErrNotFound, "finding assignment by ID")
	}
	return doc.assignment(), nil
}

func (repo assignmentRepository) update(ctx context.Context, id string, set bson.M, msg string) error {
	res, err := repo.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if res.MatchedCount == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) UpdateAssignmentSubmission(ctx context.Context, id string, at time.Time) error {
	return repo.update(ctx, id, bson.M{"submitted": true, "submission_date": at.UTC()}, "updating assignment submission")
}

func (repo assignmentRepository) UpdateAssignmentAnswer(ctx context.Context, id string, answer assignment.File) error {
	return repo.update(ctx, id, bson.M{"answer_file": fileDoc(answer)}, "updating assignment answer")
}

func (repo assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.coll, ids)
}
