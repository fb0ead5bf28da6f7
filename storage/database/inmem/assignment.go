package inmemdb

import (
	"context"
	"time"

	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/listing"
)

type assignmentRepository struct {
	db *table[assignment.Assignment]
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.insert(asg.ID, asg)
	return asg, nil
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter listing.Filter) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	f := filter.StoreSide()
	return repo.db.query(func(a assignment.Assignment) bool {
		return (f.Level == "" || a.Level == f.Level) && (f.Subject == "" || a.Subject == f.Subject)
	}), nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.get(id); ok {
		return asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignmentSubmission(_ context.Context, id string, at time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg, ok := repo.db.rows[id]
	if !ok {
		return assignment.ErrNotFound
	}
	asg.Submitted = true
	asg.SubmissionDate = &at
	return nil
}

func (repo *assignmentRepository) UpdateAssignmentAnswer(_ context.Context, id string, answer assignment.File) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg, ok := repo.db.rows[id]
	if !ok {
		return assignment.ErrNotFound
	}
	asg.Answer = &answer
	return nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.delete(ids...)
	return nil
}
