package model

import (
	"fmt"
	"sort"
)

// CollectionKey identifies one collection date as printed in the PDF.
// Day and Month are 1-based.
type CollectionKey struct {
	Day   int
	Month int
	Year  int
}

// String renders the key as DD/MM/YYYY, the format used in logs and
// event descriptions.
func (k CollectionKey) String() string {
	return fmt.Sprintf("%02d/%02d/%d", k.Day, k.Month, k.Year)
}

func (k CollectionKey) less(o CollectionKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	if k.Month != o.Month {
		return k.Month < o.Month
	}
	return k.Day < o.Day
}

// Collection is a single waste pickup: its date and the category text
// that followed the date on the PDF line.
type Collection struct {
	Key     CollectionKey
	Details string
}

// CollectionSet is an immutable date -> details mapping. Build one with
// a CollectionBuilder.
type CollectionSet struct {
	entries map[CollectionKey]string
}

func (s CollectionSet) Len() int {
	return len(s.entries)
}

// Get returns the details recorded for k.
func (s CollectionSet) Get(k CollectionKey) (string, bool) {
	d, ok := s.entries[k]
	return d, ok
}

// Entries returns all collections sorted by date.
func (s CollectionSet) Entries() []Collection {
	out := make([]Collection, 0, len(s.entries))
	for k, d := range s.entries {
		out = append(out, Collection{Key: k, Details: d})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.less(out[j].Key)
	})
	return out
}

// CollectionBuilder accumulates collections. A later Put for the same key
// replaces the earlier details.
type CollectionBuilder struct {
	entries map[CollectionKey]string
}

func NewCollectionBuilder() *CollectionBuilder {
	return &CollectionBuilder{entries: make(map[CollectionKey]string)}
}

func (b *CollectionBuilder) Put(k CollectionKey, details string) {
	b.entries[k] = details
}

// Build returns a snapshot. The builder may keep being used afterwards
// without affecting the returned set.
func (b *CollectionBuilder) Build() CollectionSet {
	snap := make(map[CollectionKey]string, len(b.entries))
	for k, d := range b.entries {
		snap[k] = d
	}
	return CollectionSet{entries: snap}
}

// MonthSpan is the region of the document text attributed to one month.
// Start and End are byte offsets, End exclusive.
type MonthSpan struct {
	Label string
	Month int
	Start int
	End   int
}

// Warning is a non-fatal diagnostic raised while scanning the text.
type Warning struct {
	// Month is the month label the warning relates to, if any.
	Month   string
	Line    string
	Message string
}

func (w Warning) String() string {
	if w.Month == "" {
		return w.Message
	}
	if w.Line == "" {
		return w.Month + ": " + w.Message
	}
	return fmt.Sprintf("%s: %s (%q)", w.Month, w.Message, w.Line)
}
