package docstore

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with the same query semantics as
// GormStore. It backs local runs without a database and unit tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

// Put inserts or replaces documents in collection.
func (s *MemoryStore) Put(collection string, docs ...Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		c = make(map[string]Document)
		s.collections[collection] = c
	}
	for _, d := range docs {
		c[d.ID] = Document{ID: d.ID, Fields: maps.Clone(d.Fields)}
	}
}

// Query implements Store.
func (s *MemoryStore) Query(ctx context.Context, q Query) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []Document
	for _, d := range s.collections[q.Collection] {
		if matches(d, q.Filters) {
			matched = append(matched, Document{ID: d.ID, Fields: maps.Clone(d.Fields)})
		}
	}
	s.mu.RUnlock()

	if q.OrderBy.Field != "" {
		field, desc := q.OrderBy.Field, q.OrderBy.Direction == Desc
		sort.Slice(matched, func(i, j int) bool {
			cmp := matched[i].Fields.Time(field).Compare(matched[j].Fields.Time(field))
			if cmp == 0 {
				cmp = strings.Compare(matched[i].ID, matched[j].ID)
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})

		if q.After != nil {
			start := len(matched)
			for i, d := range matched {
				if q.After.after(d.Fields.Time(field), d.ID, q.OrderBy.Direction) {
					start = i
					break
				}
			}
			matched = matched[start:]
		}
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	}

	result := &Result{}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
		result.HasMore = true
	}
	result.Documents = matched
	if n := len(matched); n > 0 && q.OrderBy.Field != "" {
		last := matched[n-1]
		result.Last = newCursor(q, last.Fields.Time(q.OrderBy.Field), last.ID)
	}
	return result, nil
}

func matches(d Document, filters []Filter) bool {
	for _, f := range filters {
		var cmp int
		switch v := f.Value.(type) {
		case string:
			actual := d.ID
			if f.Field != FieldID {
				s, ok := d.Fields.String(f.Field)
				if !ok {
					return false
				}
				actual = s
			}
			cmp = strings.Compare(actual, v)
		case time.Time:
			// missing timestamps compare as the zero time, like the zero column GormStore writes
			cmp = d.Fields.Time(f.Field).Compare(v)
		default:
			return false
		}
		if !satisfies(cmp, f.Op) {
			return false
		}
	}
	return true
}

func satisfies(cmp int, op Op) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}
