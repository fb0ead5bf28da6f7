// Package inmemdb keeps every record in process memory. It backs the
// "memory" database backend and the service tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/core/subscriber"
)

type (
	DB struct {
		core.SequencedTransactor

		notification *table[notification.Notification]
		assignment   *table[assignment.Assignment]
		material     *table[material.Material]
		subject      *table[subject.Subject]
		subscriber   *table[subscriber.Subscriber]
	}

	// table keeps rows in insertion order so listings are deterministic on ties.
	table[T any] struct {
		sync.RWMutex
		rows  map[string]*T
		order []string
	}
)

func Open() *DB {
	return &DB{
		notification: newTable[notification.Notification](),
		assignment:   newTable[assignment.Assignment](),
		material:     newTable[material.Material](),
		subject:      newTable[subject.Subject](),
		subscriber:   newTable[subscriber.Subscriber](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

// the helpers below expect the caller to hold the table lock

func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = &row
}

func (t *table[T]) get(id string) (T, bool) {
	if row, ok := t.rows[id]; ok {
		return *row, true
	}
	var zero T
	return zero, false
}

func (t *table[T]) query(keep func(T) bool) []T {
	rows := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if row := *t.rows[id]; keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *table[T]) delete(ids ...string) {
	for _, id := range ids {
		delete(t.rows, id)
	}
	order := t.order[:0]
	for _, id := range t.order {
		if _, ok := t.rows[id]; ok {
			order = append(order, id)
		}
	}
	t.order = order
}
