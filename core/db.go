package core

import (
	"context"
	"strings"
)

// Transactor runs fn as one unit of work. Repositories called with the ctx
// handed to fn take part in it.
type Transactor interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

// SequencedTransactor is used by stores without multi-record transactions:
// writes simply run in order and the first failure stops the rest.
type SequencedTransactor struct{}

var _ Transactor = SequencedTransactor{}

func (SequencedTransactor) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops orderings on fields not in `fields`.
func AllowedOrderings(orderings []DBOrdering, fields ...string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		for _, f := range fields {
			if strings.EqualFold(ord.Field, f) {
				allowed = append(allowed, DBOrdering{Field: f, Ascending: ord.Ascending})
				break
			}
		}
	}
	return allowed
}
