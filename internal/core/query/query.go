// Package query filters, searches and sorts in-memory record collections.
package query

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All disables a category filter.
const All = "all"

// SortKey selects the ordering of Apply.
type SortKey string

const (
	SortRecent SortKey = "recent"
	SortSize   SortKey = "size"
	SortName   SortKey = "name"
)

// ParseSortKey maps a raw value to a SortKey. Unknown values sort by recency.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortSize:
		return SortSize
	case SortName:
		return SortName
	default:
		return SortRecent
	}
}

// Spec is a query over a collection.
type Spec struct {
	FreeText        string            `json:"q,omitempty"`
	CategoryFilters map[string]string `json:"filters,omitempty"`
	SortKey         SortKey           `json:"sortBy,omitempty"`
}

// Record is a queryable collection item.
//
// Missing sizes resolve to 0 and missing or unparseable timestamps to the zero
// time; implementations never fail.
type Record interface {
	SearchFields() []string
	NestedSearchFields() [][]string
	Category(field string) string
	SortSize() float64
	SortTime() time.Time
	SortName() string
}

// Field declares the known values of a category discriminant.
// Combined, when set, is a value that matches every specific filter (e.g. usage "both").
type Field struct {
	Values   []string
	Combined string
}

func (f Field) known(v string) bool {
	return slices.Contains(f.Values, v)
}

// Schema lists the filterable fields of a record type and the collation locale for name sorting.
type Schema struct {
	Fields map[string]Field
	Locale language.Tag
}

// Apply returns a new slice with the records matching spec, sorted stably.
// records is never modified.
func Apply[T Record](records []T, spec Spec, schema Schema) []T {
	filters := activeFilters(spec.CategoryFilters, schema)
	text := newTextMatcher(spec.FreeText)

	out := make([]T, 0, len(records))
	for _, r := range records {
		if !matchesCategories(r, filters, schema) {
			continue
		}
		if !text.matches(r) {
			continue
		}
		out = append(out, r)
	}

	sortRecords(out, ParseSortKey(string(spec.SortKey)), schema.Locale)
	return out
}

// activeFilters drops filters that are empty, "all", undeclared or carry an unknown value.
func activeFilters(filters map[string]string, schema Schema) map[string]string {
	active := make(map[string]string, len(filters))
	for field, value := range filters {
		if value == "" || value == All {
			continue
		}
		f, ok := schema.Fields[field]
		if !ok || !f.known(value) {
			continue
		}
		active[field] = value
	}
	return active
}

func matchesCategories(r Record, filters map[string]string, schema Schema) bool {
	for field, want := range filters {
		got := r.Category(field)
		if got == want {
			continue
		}
		if c := schema.Fields[field].Combined; c != "" && got == c {
			continue
		}
		return false
	}
	return true
}

// textMatcher does case-folded substring matching. A Caser is stateful, so
// each Apply builds its own.
type textMatcher struct {
	caser  cases.Caser
	needle string
}

func newTextMatcher(q string) *textMatcher {
	m := &textMatcher{caser: cases.Fold()}
	m.needle = m.caser.String(strings.TrimSpace(q))
	return m
}

// matches is an OR across the record's own fields and every nested item.
func (m *textMatcher) matches(r Record) bool {
	if m.needle == "" {
		return true
	}
	if m.containsAny(r.SearchFields()) {
		return true
	}
	for _, nested := range r.NestedSearchFields() {
		if m.containsAny(nested) {
			return true
		}
	}
	return false
}

func (m *textMatcher) containsAny(fields []string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(m.caser.String(f), m.needle) {
			return true
		}
	}
	return false
}

type sortable[T Record] struct {
	rec  T
	size float64
	at   time.Time
	name string
}

func sortRecords[T Record](items []T, key SortKey, locale language.Tag) {
	if len(items) < 2 {
		return
	}

	// Keys are computed once; SortTime may parse strings.
	keyed := make([]sortable[T], len(items))
	for i, r := range items {
		keyed[i] = sortable[T]{rec: r}
		switch key {
		case SortSize:
			keyed[i].size = r.SortSize()
		case SortName:
			keyed[i].name = r.SortName()
		default:
			keyed[i].at = r.SortTime()
		}
	}

	switch key {
	case SortSize:
		slices.SortStableFunc(keyed, func(a, b sortable[T]) int {
			switch {
			case a.size > b.size:
				return -1
			case a.size < b.size:
				return 1
			}
			return 0
		})
	case SortName:
		if locale == language.Und {
			locale = language.Korean
		}
		// collate.Collator is not safe for concurrent use.
		col := collate.New(locale)
		slices.SortStableFunc(keyed, func(a, b sortable[T]) int {
			return col.CompareString(a.name, b.name)
		})
	default:
		slices.SortStableFunc(keyed, func(a, b sortable[T]) int {
			return b.at.Compare(a.at)
		})
	}

	for i := range keyed {
		items[i] = keyed[i].rec
	}
}
