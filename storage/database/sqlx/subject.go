package sqlxrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject) (subject.Subject, error) {
	_, err := repo.db.exec(ctx).NamedExecContext(ctx, "INSERT INTO subjects (id, name) VALUES (:id, :name)", subj)
	if isUniqueViolation(err) {
		return subject.Subject{}, subject.ErrNameExists
	}
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context, orderings ...core.DBOrdering) ([]subject.Subject, error) {
	// only allowed fields reach here, see subject.OrderingFields
	orderList := make([]string, 0, len(orderings))
	for _, ord := range core.AllowedOrderings(orderings, subject.OrderingFields...) {
		orderList = append(orderList, ord.String())
	}
	if len(orderList) == 0 {
		orderList = append(orderList, "name ASC")
	}

	subjs := make([]subject.Subject, 0)
	query := "SELECT id, name FROM subjects ORDER BY " + strings.Join(orderList, ", ")
	if err := repo.db.exec(ctx).SelectContext(ctx, &subjs, query); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjs, nil
}

func (repo subjectRepository) GetSubjectByName(ctx context.Context, name string) (subject.Subject, error) {
	ext := repo.db.exec(ctx)
	var subj subject.Subject
	if err := ext.GetContext(ctx, &subj, ext.Rebind("SELECT id, name FROM subjects WHERE name = ?"), name); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "finding subject by name")
	}
	return subj, nil
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.db.exec(ctx), "subjects", ids)
}
