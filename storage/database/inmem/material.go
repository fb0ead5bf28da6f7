package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
)

type materialRepository struct {
	db *table[material.Material]
}

var _ material.CursorRepository = (*materialRepository)(nil) // interface compliance check

// ErrStaleCursor is returned when the record a cursor points after was deleted.
var ErrStaleCursor = errors.New("stale cursor")

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.material}
}

func (repo *materialRepository) CreateMaterial(_ context.Context, mat material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.insert(mat.ID, mat)
	return mat, nil
}

func (repo *materialRepository) QueryMaterials(_ context.Context, filter listing.Filter) ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// the store side of the filter never carries a filename search
	pred := filter.StoreSide().Predicate()
	return repo.db.query(func(m material.Material) bool { return pred(m.ListingRecord()) }), nil
}

func (repo *materialRepository) GetMaterialByID(_ context.Context, id string) (material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mat, ok := repo.db.get(id); ok {
		return mat, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) DeleteMaterialsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.delete(ids...)
	return nil
}

// sorted returns the materials passing filter in listing order.
func (repo *materialRepository) sorted(filter listing.Filter) []material.Material {
	pred := filter.StoreSide().Predicate()
	mats := repo.db.query(func(m material.Material) bool { return pred(m.ListingRecord()) })
	return listing.SortByCreatedAt(mats)
}

// Scan pages by the ID of the last material returned.
func (repo *materialRepository) Scan(_ context.Context, filter listing.Filter, after listing.Cursor, limit int) ([]material.Material, listing.Cursor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mats := repo.sorted(filter)
	start := 0
	if after != "" {
		start = -1
		for i, m := range mats {
			if m.ID == string(after) {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", ErrStaleCursor
		}
	}
	end := start + limit
	if end > len(mats) {
		end = len(mats)
	}
	page := append([]material.Material(nil), mats[start:end]...)
	if len(page) == 0 {
		return page, after, nil
	}
	return page, listing.Cursor(page[len(page)-1].ID), nil
}

func (repo *materialRepository) Count(_ context.Context, filter listing.Filter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.sorted(filter)), nil
}
