package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrCursorQuery is returned when a filename search is sent to a cursor-paginated source.
var ErrCursorQuery = errors.New("filename search cannot be cursor paginated")

// Cursor is an opaque position in a store-paginated listing. "" is the start.
type Cursor string

// CursorSource is a store that can only hand out "N records after cursor C",
// in listing order (creation date desc).
type CursorSource[T Item] interface {
	Scan(ctx context.Context, filter Filter, after Cursor, limit int) ([]T, Cursor, error)
	Count(ctx context.Context, filter Filter) (int, error)
}

// CursorKey identifies the cursor sitting right after the last item of a page.
type CursorKey struct {
	Filter   Filter
	PageSize int
	Page     int
}

func (k CursorKey) String() string {
	f := k.Filter.StoreSide()
	return fmt.Sprintf("l=%s|s=%s|t=%s|size=%d|page=%d", f.Level, f.Subject, f.FileType, k.PageSize, k.Page)
}

// CursorCache remembers page end cursors. Every write to the source must Invalidate it.
type CursorCache interface {
	Get(ctx context.Context, key CursorKey) (Cursor, bool, error)
	Set(ctx context.Context, key CursorKey, cursor Cursor) error
	Invalidate(ctx context.Context) error
}

// CursorPager reaches page K of a cursor-paginated source.
//
// Without a cache it re-walks the first (K-1)*size records on every call, so a
// jump to page K costs O(K) store reads. With a cache it resumes from the
// closest cached page before K and stores every cursor it walks past.
// It applies no visibility window.
type CursorPager[T Item] struct {
	src   CursorSource[T]
	cache CursorCache
}

func NewCursorPager[T Item](src CursorSource[T], cache CursorCache) *CursorPager[T] {
	return &CursorPager[T]{src: src, cache: cache}
}

// Invalidate drops every cached cursor. Call it after any write to the source.
func (p *CursorPager[T]) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx)
}

func (p *CursorPager[T]) Page(ctx context.Context, filter Filter, req PageRequest) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}
	filter = filter.Clean()
	if filter.Query != "" {
		return Page[T]{}, ErrCursorQuery
	}

	total, err := p.src.Count(ctx, filter)
	if err != nil {
		return Page[T]{}, errors.Wrap(err, "counting records")
	}
	page := Page[T]{
		Items:      []T{},
		Number:     req.Number,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: TotalPages(total, req.Size),
	}
	if req.Number > page.TotalPages {
		return page, nil
	}

	after, ok, err := p.seek(ctx, filter, req)
	if err != nil {
		return Page[T]{}, err
	}
	if !ok { // source shrank under us
		return page, nil
	}

	items, next, err := p.src.Scan(ctx, filter, after, req.Size)
	if err != nil {
		return Page[T]{}, errors.Wrap(err, "scanning records")
	}
	for _, item := range items {
		if err = item.ListingRecord().Validate(); err != nil {
			return Page[T]{}, err
		}
	}
	if len(items) == req.Size {
		p.remember(ctx, CursorKey{Filter: filter, PageSize: req.Size, Page: req.Number}, next)
	}
	page.Items = append(page.Items, items...)
	return page, nil
}

// seek returns the cursor right after page req.Number-1.
func (p *CursorPager[T]) seek(ctx context.Context, filter Filter, req PageRequest) (Cursor, bool, error) {
	target := req.Number - 1
	if target == 0 {
		return "", true, nil
	}

	if p.cache == nil {
		// one read of (K-1)*size records to recover the cursor
		items, cursor, err := p.src.Scan(ctx, filter, "", target*req.Size)
		if err != nil {
			return "", false, errors.Wrap(err, "re-walking records")
		}
		return cursor, len(items) == target*req.Size, nil
	}

	// closest cached page at or before target
	var cursor Cursor
	from := 0
	for pg := target; pg > 0; pg-- {
		c, ok, err := p.cache.Get(ctx, CursorKey{Filter: filter, PageSize: req.Size, Page: pg})
		if err != nil {
			return "", false, errors.Wrap(err, "reading cursor cache")
		}
		if ok {
			cursor, from = c, pg
			break
		}
	}

	for pg := from + 1; pg <= target; pg++ {
		items, next, err := p.src.Scan(ctx, filter, cursor, req.Size)
		if err != nil {
			return "", false, errors.Wrap(err, "re-walking records")
		}
		if len(items) < req.Size {
			return "", false, nil
		}
		cursor = next
		p.remember(ctx, CursorKey{Filter: filter, PageSize: req.Size, Page: pg}, cursor)
	}
	return cursor, true, nil
}

// remember is best effort: a failing cache only costs a re-walk later.
func (p *CursorPager[T]) remember(ctx context.Context, key CursorKey, cursor Cursor) {
	if p.cache != nil {
		_ = p.cache.Set(ctx, key, cursor)
	}
}

// MemoryCursorCache is a process-local CursorCache.
type MemoryCursorCache struct {
	mu      sync.RWMutex
	cursors map[string]Cursor
}

var _ CursorCache = (*MemoryCursorCache)(nil) // interface compliance check

func NewMemoryCursorCache() *MemoryCursorCache {
	return &MemoryCursorCache{cursors: make(map[string]Cursor)}
}

func (c *MemoryCursorCache) Get(_ context.Context, key CursorKey) (Cursor, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cursor, ok := c.cursors[key.String()]
	return cursor, ok, nil
}

func (c *MemoryCursorCache) Set(_ context.Context, key CursorKey, cursor Cursor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors[key.String()] = cursor
	return nil
}

func (c *MemoryCursorCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors = make(map[string]Cursor)
	return nil
}
