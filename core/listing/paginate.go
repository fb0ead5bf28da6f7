package listing

import (
	"sort"

	"github.com/pkg/errors"
)

// PageRequest is a 1-indexed page of a fixed size.
type PageRequest struct {
	Number int
	Size   int
}

func (req PageRequest) Validate() error {
	if req.Number < 1 {
		return errors.Wrapf(ErrInvalidPageRequest, "page number must be >= 1 (got %d)", req.Number)
	}
	if req.Size < 1 {
		return errors.Wrapf(ErrInvalidPageRequest, "page size must be >= 1 (got %d)", req.Size)
	}
	return nil
}

func (req PageRequest) offset() int { return (req.Number - 1) * req.Size }

// Page is one slice of a sorted listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// TotalPages is ceil(total/size); 0 when there is nothing to list.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// SortByCreatedAt returns a copy of items, most recent first. Ties keep input order.
func SortByCreatedAt[T Item](items []T) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ListingRecord().CreatedAt.After(sorted[j].ListingRecord().CreatedAt)
	})
	return sorted
}

// SortAndPaginate sorts items by creation date (desc) and returns the requested page.
// A page beyond the last one is empty, not an error.
func SortAndPaginate[T Item](items []T, req PageRequest) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}
	return paginate(SortByCreatedAt(items), req), nil
}

// paginate slices an already sorted sequence.
func paginate[T any](sorted []T, req PageRequest) Page[T] {
	total := len(sorted)
	page := Page[T]{
		Items:      []T{},
		Number:     req.Number,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: TotalPages(total, req.Size),
	}
	start := req.offset()
	if start >= total {
		return page
	}
	end := start + req.Size
	if end > total {
		end = total
	}
	page.Items = append(page.Items, sorted[start:end]...)
	return page
}
