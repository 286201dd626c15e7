// Package store expone las tablas read-only de clientes y usuarios que consume
// el token endpoint. Se cargan al arranque y no se mutan mientras se sirven requests.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
)

var ErrNotFound = errors.New("store: not found")

// Client es la vista mínima de un cliente OAuth que necesitan los validadores.
type Client struct {
	ID            string
	AllowedScopes []string
	// GrantTypes vacío => se permiten todos los grants registrados.
	GrantTypes []string
}

// AllowsGrant indica si el cliente puede usar el grant type.
func (c *Client) AllowsGrant(grantType string) bool {
	if len(c.GrantTypes) == 0 {
		return true
	}
	return slices.ContainsFunc(c.GrantTypes, func(g string) bool {
		return strings.EqualFold(g, grantType)
	})
}

// ClientStore resuelve clientId -> Client.
type ClientStore interface {
	Lookup(ctx context.Context, clientID string) (*Client, error)
}

// Clients es un ClientStore en memoria, inmutable tras NewClients.
type Clients struct {
	byID map[string]Client
}

// NewClients indexa los clientes por ID. IDs vacíos o repetidos son error.
func NewClients(list ...Client) (*Clients, error) {
	m := make(map[string]Client, len(list))
	for _, c := range list {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, errors.New("store: client with empty id")
		}
		if _, dup := m[id]; dup {
			return nil, errors.New("store: duplicate client " + id)
		}
		c.ID = id
		c.AllowedScopes = slices.Clone(c.AllowedScopes)
		c.GrantTypes = slices.Clone(c.GrantTypes)
		m[id] = c
	}
	return &Clients{byID: m}, nil
}

func (s *Clients) Lookup(ctx context.Context, clientID string) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := s.byID[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	// copia: el caller no puede tocar la tabla compartida
	c.AllowedScopes = slices.Clone(c.AllowedScopes)
	c.GrantTypes = slices.Clone(c.GrantTypes)
	return &c, nil
}
