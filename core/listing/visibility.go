package listing

import "time"

// Visible returns the items still listed at `now`, in input order.
// A single item breaking the submission invariant aborts the whole call.
func Visible[T Item](items []T, now time.Time, window time.Duration) ([]T, error) {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		rec := item.ListingRecord()
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if rec.VisibleAt(now, window) {
			visible = append(visible, item)
		}
	}
	return visible, nil
}
