package store

import "sort"

// Filter is a set of excluded user ids. It is not safe for concurrent
// mutation; the recording session rejects changes while it is active.
type Filter struct {
	ids map[uint64]struct{}
}

// NewFilter creates a filter excluding the given user ids.
func NewFilter(ids ...uint64) *Filter {
	f := &Filter{ids: make(map[uint64]struct{}, len(ids))}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f
}

// Add excludes userID.
func (f *Filter) Add(userID uint64) {
	if f.ids == nil {
		f.ids = make(map[uint64]struct{})
	}
	f.ids[userID] = struct{}{}
}

// Remove stops excluding userID.
func (f *Filter) Remove(userID uint64) {
	delete(f.ids, userID)
}

// Contains reports whether userID is excluded. A nil filter excludes nobody.
func (f *Filter) Contains(userID uint64) bool {
	if f == nil {
		return false
	}
	_, ok := f.ids[userID]
	return ok
}

// Len returns the number of excluded ids.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ids)
}

// IDs returns the excluded ids in ascending order.
func (f *Filter) IDs() []uint64 {
	if f == nil {
		return nil
	}
	ids := make([]uint64, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns an independent copy.
func (f *Filter) Clone() *Filter {
	return NewFilter(f.IDs()...)
}
