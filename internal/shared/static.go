package shared

import (
	"context"
	"fmt"
	"sort"

	"github.com/dropDatabas3/mallkit/internal/config"
)

// Static es un Repository en memoria, armado desde shared_stores del YAML.
type Static struct {
	byID map[string]Store
}

func NewStatic(stores []Store) *Static {
	m := make(map[string]Store, len(stores))
	for _, s := range stores {
		m[s.ID] = s
	}
	return &Static{byID: m}
}

// FromConfig convierte las entradas de config.
func FromConfig(entries []config.SharedStore) *Static {
	stores := make([]Store, 0, len(entries))
	for _, e := range entries {
		stores = append(stores, Store{ID: e.ID, Name: e.Name, Domain: e.Domain, AppID: e.AppID, AppKey: e.AppKey})
	}
	return NewStatic(stores)
}

func (s *Static) Get(ctx context.Context, id string) (Store, error) {
	st, ok := s.byID[id]
	if !ok {
		return Store{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, nil
}

func (s *Static) List(ctx context.Context) ([]Store, error) {
	out := make([]Store, 0, len(s.byID))
	for _, st := range s.byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
