// Package selection keeps the user's chosen product ids and persists them
// after every change.
package selection

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"

	"routine-advisor/internal/store"
)

// StorageKey is the durable key holding the JSON array of selected ids.
const StorageKey = "loreal_selected_products_v1"

// Store is the Selection Set. It is owned by a single event loop and is not
// safe for concurrent use.
type Store struct {
	storage store.Storage
	ids     map[int]struct{}
	log     logrus.FieldLogger
}

func New(storage store.Storage, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{storage: storage, ids: make(map[int]struct{}), log: log}
}

// Load replaces the in-memory set with the persisted one. Missing or corrupt
// data yields an empty set; Load never fails.
func (s *Store) Load(ctx context.Context) {
	s.ids = make(map[int]struct{})
	raw, ok, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		s.log.WithError(err).Debug("selection storage unreadable, starting empty")
		return
	}
	if !ok || raw == "" {
		return
	}
	var values []any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		s.log.WithError(err).Debug("selection data corrupt, starting empty")
		return
	}
	for _, v := range values {
		f, isNum := v.(float64)
		if !isNum || f != float64(int(f)) {
			continue
		}
		s.ids[int(f)] = struct{}{}
	}
}

// Save persists the set as an ascending JSON array.
func (s *Store) Save(ctx context.Context) error {
	b, err := json.Marshal(s.IDs())
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, StorageKey, string(b))
}

// Toggle flips membership of id and persists. The id need not exist in the
// catalog.
func (s *Store) Toggle(ctx context.Context, id int) error {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	return s.Save(ctx)
}

// Remove drops id if present and persists.
func (s *Store) Remove(ctx context.Context, id int) error {
	delete(s.ids, id)
	return s.Save(ctx)
}

// Clear empties the set and persists.
func (s *Store) Clear(ctx context.Context) error {
	s.ids = make(map[int]struct{})
	return s.Save(ctx)
}

func (s *Store) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Store) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order.
func (s *Store) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
