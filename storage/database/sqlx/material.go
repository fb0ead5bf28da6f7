package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
)

type materialRow struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Subject    string    `db:"subject"`
	Level      string    `db:"level"`
	Filename   string    `db:"filename"`
	FileURL    string    `db:"file_url"`
	FileType   string    `db:"file_type"`
	UploadDate time.Time `db:"upload_date"`
}

const materialColumns = "id, title, subject, level, filename, file_url, file_type, upload_date"

// materialRepository lists materials in memory; page cursors are a mongo feature.
type materialRepository struct {
	db *DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo materialRepository) fromRow(row materialRow) material.Material {
	return material.Material{
		ID:         row.ID,
		Title:      row.Title,
		Subject:    row.Subject,
		Level:      row.Level,
		Filename:   row.Filename,
		FileURL:    row.FileURL,
		FileType:   row.FileType,
		UploadDate: row.UploadDate.UTC(),
	}
}

func (repo materialRepository) CreateMaterial(ctx context.Context, mat material.Material) (material.Material, error) {
	_, err := repo.db.exec(ctx).NamedExecContext(ctx,
		"INSERT INTO course_materials ("+materialColumns+") VALUES "+
			"(:id, :title, :subject, :level, :filename, :file_url, :file_type, :upload_date)",
		materialRow{
			ID:         mat.ID,
			Title:      mat.Title,
			Subject:    mat.Subject,
			Level:      mat.Level,
			Filename:   mat.Filename,
			FileURL:    mat.FileURL,
			FileType:   mat.FileType,
			UploadDate: mat.UploadDate.UTC(),
		})
	if err != nil {
		return material.Material{}, errors.Wrap(err, "inserting material")
	}
	return mat, nil
}

func (repo materialRepository) QueryMaterials(ctx context.Context, filter listing.Filter) ([]material.Material, error) {
	f := filter.StoreSide()
	var w where
	w.eq("level", f.Level)
	w.eq("subject", f.Subject)
	w.eq("file_type", f.FileType)

	ext := repo.db.exec(ctx)
	var rows []materialRow
	query := ext.Rebind("SELECT " + materialColumns + " FROM course_materials" + w.String() + " ORDER BY upload_date DESC, id DESC")
	if err := ext.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	mats := make([]material.Material, 0, len(rows))
	for _, row := range rows {
		mats = append(mats, repo.fromRow(row))
	}
	return mats, nil
}

func (repo materialRepository) GetMaterialByID(ctx context.Context, id string) (material.Material, error) {
	ext := repo.db.exec(ctx)
	var row materialRow
	query := ext.Rebind("SELECT " + materialColumns + " FROM course_materials WHERE id = ?")
	if err := ext.GetContext(ctx, &row, query, id); err != nil {
		return material.Material{}, trapNoRowsErr(err, material.ErrNotFound, "finding material by ID")
	}
	return repo.fromRow(row), nil
}

func (repo materialRepository) DeleteMaterialsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.db.exec(ctx), "course_materials", ids)
}
