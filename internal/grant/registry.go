package grant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound: no hay validador para el grant type.
var ErrNotFound = errors.New("grant: no validator registered")

// Validator valida un tipo de grant.
//
// Validate es total para input recuperable: credenciales malas, parámetros
// faltantes, etc. se devuelven como Failure. Un error devuelto significa una
// falla interna (store caído, datos corruptos) y nunca se traduce a invalid_grant.
type Validator interface {
	GrantType() string
	Validate(ctx context.Context, req Request) (Outcome, error)
}

// Registry mapea grant type -> Validator. Se arma una vez al arranque y es
// read-only después, por eso no necesita locks.
type Registry struct {
	byType map[string]Validator
}

// NewRegistry registra los validadores. Grant types vacíos o repetidos son error.
func NewRegistry(validators ...Validator) (*Registry, error) {
	r := &Registry{byType: make(map[string]Validator, len(validators))}
	for _, v := range validators {
		if v == nil {
			return nil, errors.New("grant: nil validator")
		}
		gt := strings.TrimSpace(v.GrantType())
		if gt == "" {
			return nil, errors.New("grant: validator with empty grant type")
		}
		if _, dup := r.byType[gt]; dup {
			return nil, fmt.Errorf("grant: duplicate validator for %q", gt)
		}
		r.byType[gt] = v
	}
	return r, nil
}

// Resolve devuelve el validador del grant type (match exacto).
func (r *Registry) Resolve(grantType string) (Validator, error) {
	v, ok := r.byType[grantType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, grantType)
	}
	return v, nil
}

// GrantTypes lista los grant types registrados, ordenados.
func (r *Registry) GrantTypes() []string {
	out := make([]string, 0, len(r.byType))
	for gt := range r.byType {
		out = append(out, gt)
	}
	sort.Strings(out)
	return out
}
