package listing

import "strings"

// Predicate reports whether a record passes a filter.
type Predicate func(Record) bool

// And composes predicates with logical AND. No predicates match everything.
func And(preds ...Predicate) Predicate {
	return func(rec Record) bool {
		for _, pred := range preds {
			if !pred(rec) {
				return false
			}
		}
		return true
	}
}

// Filter holds the optional list filters. An empty value or All means no constraint.
type Filter struct {
	Level    string `query:"level"`
	Subject  string `query:"subject"`
	FileType string `query:"file_type"`
	Query    string `query:"q"`
}

// Clean trims every field and turns the All sentinel into "".
func (f Filter) Clean() Filter {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if s == All {
			return ""
		}
		return s
	}
	return Filter{
		Level:    clean(f.Level),
		Subject:  clean(f.Subject),
		FileType: clean(f.FileType),
		Query:    strings.TrimSpace(f.Query),
	}
}

// StoreSide keeps the categorical constraints a store may filter on itself.
// Filename search is never pushed down.
func (f Filter) StoreSide() Filter {
	f = f.Clean()
	f.Query = ""
	return f
}

// IsEmpty reports whether the filter constrains nothing.
func (f Filter) IsEmpty() bool {
	return f.Clean() == Filter{}
}

// Predicates returns one predicate per active constraint.
func (f Filter) Predicates() []Predicate {
	f = f.Clean()
	preds := make([]Predicate, 0, 4)
	if f.Level != "" {
		preds = append(preds, fieldEquals(f.Level, func(r Record) string { return r.Level }))
	}
	if f.Subject != "" {
		preds = append(preds, fieldEquals(f.Subject, func(r Record) string { return r.Subject }))
	}
	if f.FileType != "" {
		preds = append(preds, fieldEquals(f.FileType, func(r Record) string { return r.FileType }))
	}
	if f.Query != "" {
		query := strings.ToLower(f.Query)
		preds = append(preds, func(r Record) bool {
			return strings.Contains(strings.ToLower(r.Filename), query)
		})
	}
	return preds
}

// Predicate is the AND of all active constraints.
func (f Filter) Predicate() Predicate { return And(f.Predicates()...) }

// Match reports whether rec passes every constraint.
func (f Filter) Match(rec Record) bool { return f.Predicate()(rec) }

func fieldEquals(want string, field func(Record) string) Predicate {
	return func(r Record) bool { return field(r) == want }
}

// Apply returns the items passing pred, in input order.
func Apply[T Item](items []T, pred Predicate) []T {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item.ListingRecord()) {
			matched = append(matched, item)
		}
	}
	return matched
}
