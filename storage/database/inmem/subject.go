package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/subject"
)

type subjectRepository struct {
	db *table[subject.Subject]
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, subj subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.rows {
		if s.Name == subj.Name {
			return subject.Subject{}, subject.ErrNameExists
		}
	}
	repo.db.insert(subj.ID, subj)
	return subj, nil
}

func (repo *subjectRepository) QueryAllSubjects(_ context.Context, orderings ...core.DBOrdering) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjs := repo.db.query(nil)
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	sort.SliceStable(subjs, func(i, j int) bool {
		for _, ord := range orderings {
			a, b := subjectField(subjs[i], ord.Field), subjectField(subjs[j], ord.Field)
			if c := strings.Compare(a, b); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return false
	})
	return subjs, nil
}

func subjectField(s subject.Subject, field string) string {
	if field == "id" {
		return s.ID
	}
	return s.Name
}

func (repo *subjectRepository) GetSubjectByName(_ context.Context, name string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.query(nil) {
		if s.Name == name {
			return s, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) DeleteSubjectsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.delete(ids...)
	return nil
}
