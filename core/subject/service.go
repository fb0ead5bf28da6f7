package subject

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("subject")
	ErrNameExists = errors.New("a subject with this name already exists")
)

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type (
	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		// QueryAllSubjects returns subjects sorted by the given orderings (by name when none).
		QueryAllSubjects(ctx context.Context, orderings ...core.DBOrdering) ([]Subject, error)
		GetSubjectByName(ctx context.Context, name string) (Subject, error)
		DeleteSubjectsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

// OrderingFields are the fields subjects may be sorted on.
var OrderingFields = []string{"name", "id"}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	name := core.CleanString(ns.Name)
	if ok, err := svc.SubjectExists(ctx, name); err != nil {
		return Subject{}, err
	} else if ok {
		return Subject{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	subj, err := svc.repo.CreateSubject(ctx, Subject{ID: "subj-" + uuid.NewString(), Name: name})
	if errors.Cause(err) == ErrNameExists { // lost a race with another create
		return Subject{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	return subj, errors.Wrap(err, "creating subject")
}

// Seed creates the missing subjects among names and returns how many were created.
func (svc *Service) Seed(ctx context.Context, names ...string) (int, error) {
	var created int
	for _, name := range names {
		ok, err := svc.SubjectExists(ctx, name)
		if err != nil {
			return created, err
		}
		if ok {
			continue
		}
		if _, err = svc.Create(ctx, NewSubject{Name: name}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (svc *Service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx, core.AllowedOrderings(orderings, OrderingFields...)...)
}

// SubjectExists reports whether a subject is named exactly `name`.
func (svc *Service) SubjectExists(ctx context.Context, name string) (bool, error) {
	_, err := svc.repo.GetSubjectByName(ctx, core.CleanString(name))
	switch errors.Cause(err) {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	default:
		return false, errors.Wrap(err, "finding subject by name")
	}
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubjectsByID(ctx, ids...)
}
