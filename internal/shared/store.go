// Package shared resuelve las tiendas partner configuradas (SharedStore)
// desde config estática o Postgres, con cache opcional y app keys selladas.
package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/mallkit/internal/partner"
	"github.com/dropDatabas3/mallkit/internal/secretbox"
)

var ErrNotFound = errors.New("shared store not found")

// Store es una tienda partner conectada.
type Store struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	AppID  string `json:"app_id"`
	AppKey string `json:"app_key"`
}

// Partner devuelve las credenciales para el cliente partner.
func (s Store) Partner() partner.Store {
	return partner.Store{Domain: s.Domain, AppID: s.AppID, AppKey: s.AppKey}
}

// Repository busca tiendas por id.
type Repository interface {
	Get(ctx context.Context, id string) (Store, error)
	List(ctx context.Context) ([]Store, error)
}

// Unsealed abre con box las app keys "sealed:" que devuelva inner.
func Unsealed(inner Repository, box *secretbox.Box) Repository {
	return unsealed{inner: inner, box: box}
}

type unsealed struct {
	inner Repository
	box   *secretbox.Box
}

func (u unsealed) open(s Store) (Store, error) {
	key, err := u.box.Open(s.AppKey)
	if err != nil {
		return Store{}, fmt.Errorf("shared: app key of %s: %w", s.ID, err)
	}
	s.AppKey = key
	return s, nil
}

func (u unsealed) Get(ctx context.Context, id string) (Store, error) {
	s, err := u.inner.Get(ctx, id)
	if err != nil {
		return Store{}, err
	}
	return u.open(s)
}

func (u unsealed) List(ctx context.Context) ([]Store, error) {
	list, err := u.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Store, 0, len(list))
	for _, s := range list {
		o, err := u.open(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
