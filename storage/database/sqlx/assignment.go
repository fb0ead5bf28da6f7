package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/listing"
)

type assignmentRow struct {
	ID             string      `db:"id"`
	Title          string      `db:"title"`
	Description    string      `db:"description"`
	Subject        string      `db:"subject"`
	Level          string      `db:"level"`
	Deadline       time.Time   `db:"deadline"`
	FileURL        string      `db:"file_url"`
	FileType       string      `db:"file_type"`
	FileName       string      `db:"file_name"`
	AnswerFileURL  null.String `db:"answer_file_url"`
	AnswerFileType null.String `db:"answer_file_type"`
	AnswerFileName null.String `db:"answer_file_name"`
	Date           time.Time   `db:"date"`
	Submitted      bool        `db:"submitted"`
	SubmissionDate null.Time   `db:"submission_date"`
	NotificationID null.String `db:"notification_id"`
}

const assignmentColumns = "id, title, description, subject, level, deadline, file_url, file_type, file_name, " +
	"answer_file_url, answer_file_type, answer_file_name, date, submitted, submission_date, notification_id"

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) toRow(a assignment.Assignment) assignmentRow {
	row := assignmentRow{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Subject:        a.Subject,
		Level:          a.Level,
		Deadline:       a.Deadline.UTC(),
		FileURL:        a.File.URL,
		FileType:       a.File.Type,
		FileName:       a.File.Filename,
		Date:           a.Date.UTC(),
		Submitted:      a.Submitted,
		SubmissionDate: null.TimeFromPtr(a.SubmissionDate),
		NotificationID: null.NewString(a.NotificationID, a.NotificationID != ""),
	}
	if a.Answer != nil {
		row.AnswerFileURL = null.StringFrom(a.Answer.URL)
		row.AnswerFileType = null.StringFrom(a.Answer.Type)
		row.AnswerFileName = null.StringFrom(a.Answer.Filename)
	}
	return row
}

func (repo assignmentRepository) fromRow(row assignmentRow) assignment.Assignment {
	a := assignment.Assignment{
		ID:             row.ID,
		Title:          row.Title,
		Description:    row.Description,
		Subject:        row.Subject,
		Level:          row.Level,
		Deadline:       row.Deadline.UTC(),
		File:           assignment.File{URL: row.FileURL, Type: row.FileType, Filename: row.FileName},
		Date:           row.Date.UTC(),
		Submitted:      row.Submitted,
		SubmissionDate: utcPtr(row.SubmissionDate),
		NotificationID: row.NotificationID.String,
	}
	if row.AnswerFileURL.Valid {
		a.Answer = &assignment.File{URL: row.AnswerFileURL.String, Type: row.AnswerFileType.String, Filename: row.AnswerFileName.String}
	}
	return a
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	_, err := repo.db.exec(ctx).NamedExecContext(ctx,
		"INSERT INTO assignments ("+assignmentColumns+") VALUES "+
			"(:id, :title, :description, :subject, :level, :deadline, :file_url, :file_type, :file_name, "+
			":answer_file_url, :answer_file_type, :answer_file_name, :date, :submitted, :submission_date, :notification_id)",
		repo.toRow(asg))
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter listing.Filter) ([]assignment.Assignment, error) {
	f := filter.StoreSide()
	var w where
	w.eq("level", f.Level)
	w.eq("subject", f.Subject)

	ext := repo.db.exec(ctx)
	var rows []assignmentRow
	query := ext.Rebind("SELECT " + assignmentColumns + " FROM assignments" + w.String() + " ORDER BY date DESC, id DESC")
	if err := ext.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, repo.fromRow(row))
	}
	return asgs, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	ext := repo.db.exec(ctx)
	var row assignmentRow
	query := ext.Rebind("SELECT " + assignmentColumns + " FROM assignments WHERE id = ?")
	if err := ext.GetContext(ctx, &row, query, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment by ID")
	}
	return repo.fromRow(row), nil
}

func (repo assignmentRepository) UpdateAssignmentSubmission(ctx context.Context, id string, at time.Time) error {
	ext := repo.db.exec(ctx)
	res, err := ext.ExecContext(ctx,
		ext.Rebind("UPDATE assignments SET submitted = TRUE, submission_date = ? WHERE id = ?"), at.UTC(), id)
	return checkAffected(res, err, assignment.ErrNotFound, "updating assignment submission")
}

func (repo assignmentRepository) UpdateAssignmentAnswer(ctx context.Context, id string, answer assignment.File) error {
	ext := repo.db.exec(ctx)
	res, err := ext.ExecContext(ctx,
		ext.Rebind("UPDATE assignments SET answer_file_url = ?, answer_file_type = ?, answer_file_name = ? WHERE id = ?"),
		answer.URL, answer.Type, answer.Filename, id)
	return checkAffected(res, err, assignment.ErrNotFound, "updating assignment answer")
}

func (repo assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.db.exec(ctx), "assignments", ids)
}
