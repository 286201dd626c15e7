package grant

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/dropDatabas3/tokend/internal/claims"
	"github.com/dropDatabas3/tokend/internal/store"
)

// DefaultOutcomeParam es el parámetro que interpreta un ExtensionValidator por defecto.
const DefaultOutcomeParam = "outcome"

// Rule es el resultado exitoso asociado a un valor del parámetro.
type Rule struct {
	Subject          string
	IdentityProvider string
	Claims           map[string]claims.Value
}

// ExtensionValidator modela un grant de extensión cuya regla de negocio es
// externa: el valor de Param se busca en Rules y, si matchea, el grant es
// exitoso con el subject de la regla. Cualquier otro valor (o ausencia) es
// invalid_grant/invalid_credential.
type ExtensionValidator struct {
	Name       string
	Param      string
	Rules      map[string]Rule
	AuthMethod string // vacío => Name
	Clients    store.ClientStore
	Now        func() time.Time
}

// NewExtensionValidator copia las reglas; el validador no comparte estado mutable.
func NewExtensionValidator(name, param string, rules map[string]Rule, clients store.ClientStore) (*ExtensionValidator, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("grant: extension grant without name")
	}
	if param == "" {
		param = DefaultOutcomeParam
	}
	cp := make(map[string]Rule, len(rules))
	for k, r := range rules {
		if strings.TrimSpace(r.Subject) == "" {
			return nil, errors.New("grant: extension rule " + k + " without subject")
		}
		r.Claims = maps.Clone(r.Claims)
		cp[k] = r
	}
	return &ExtensionValidator{
		Name:    name,
		Param:   param,
		Rules:   cp,
		Clients: clients,
		Now:     time.Now,
	}, nil
}

func (v *ExtensionValidator) GrantType() string { return v.Name }

func (v *ExtensionValidator) Validate(ctx context.Context, req Request) (Outcome, error) {
	scopes, f, err := authorize(ctx, v.Clients, req)
	if err != nil {
		return Outcome{}, err
	}
	if f != nil {
		return failed(f), nil
	}

	val, _ := req.Param(v.Param)
	rule, ok := v.Rules[val]
	if !ok || val == "" {
		return Fail(ErrorInvalidGrant, DescriptionInvalidCredential), nil
	}

	amr := v.AuthMethod
	if amr == "" {
		amr = v.Name
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return Succeed(Success{
		Subject:          rule.Subject,
		AuthMethods:      []string{amr},
		Scopes:           scopes,
		IdentityProvider: rule.IdentityProvider,
		AuthTime:         now(),
		Extra:            maps.Clone(rule.Claims),
	}), nil
}
