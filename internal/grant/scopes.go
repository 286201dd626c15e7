package grant

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dropDatabas3/tokend/internal/store"
)

// GrantedScopes es la intersección de requested y allowed en el orden del request,
// sin duplicados. Un request sin scopes recibe todos los permitidos del cliente.
func GrantedScopes(requested, allowed []string) []string {
	if len(requested) == 0 {
		return slices.Clone(allowed)
	}
	out := make([]string, 0, len(requested))
	for _, s := range requested {
		if slices.Contains(allowed, s) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// authorize resuelve el cliente del request y los scopes que se le conceden.
// Devuelve un Failure para problemas del cliente y error para fallas internas.
func authorize(ctx context.Context, clients store.ClientStore, req Request) ([]string, *Failure, error) {
	if clients == nil {
		return nil, nil, errors.New("grant: no client store configured")
	}
	if req.ClientID() == "" {
		return nil, &Failure{Code: ErrorInvalidClient, Description: "missing_client_id"}, nil
	}
	client, err := clients.Lookup(ctx, req.ClientID())
	if errors.Is(err, store.ErrNotFound) {
		return nil, &Failure{Code: ErrorInvalidClient, Description: "unknown_client"}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("grant: client lookup: %w", err)
	}
	if !client.AllowsGrant(req.GrantType()) {
		return nil, &Failure{Code: ErrorUnauthorizedClient, Description: "grant_type_not_allowed"}, nil
	}
	granted := GrantedScopes(req.Scopes(), client.AllowedScopes)
	if len(granted) == 0 {
		return nil, &Failure{Code: ErrorInvalidScope, Description: "no_allowed_scope"}, nil
	}
	return granted, nil, nil
}

func failed(f *Failure) Outcome { return Fail(f.Code, f.Description) }
