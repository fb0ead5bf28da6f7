package listing

import (
	"time"

	"github.com/pkg/errors"
)

// VisibleAndPaged runs the whole listing pipeline over already fetched items:
// page request check, visibility, filters, then sort & paginate.
// Nothing is returned when any item is in an invalid state.
func VisibleAndPaged[T Item](items []T, filter Filter, req PageRequest, now time.Time, window time.Duration) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}
	visible, err := Visible(items, now, window)
	if err != nil {
		return Page[T]{}, errors.Wrap(err, "applying visibility window")
	}
	matched := Apply(visible, filter.Predicate())
	return paginate(SortByCreatedAt(matched), req), nil
}
