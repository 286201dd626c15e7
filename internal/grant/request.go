// Package grant contiene la validación pluggable de grants del token endpoint:
// el request inmutable, el resultado de validación, el registry y los validadores.
package grant

import (
	"slices"
	"time"

	"github.com/dropDatabas3/tokend/internal/claims"
	"github.com/dropDatabas3/tokend/internal/validation"
)

// Param es un parámetro del request, en el orden en que llegó.
type Param struct {
	Name  string
	Value string
}

// Request es un token request recibido. Inmutable: solo accessors.
type Request struct {
	grantType string
	clientID  string
	scope     string
	params    []Param
}

// NewRequest copia params; cambios posteriores del caller no afectan al Request.
func NewRequest(grantType, clientID, scope string, params []Param) Request {
	return Request{
		grantType: grantType,
		clientID:  clientID,
		scope:     scope,
		params:    slices.Clone(params),
	}
}

func (r Request) GrantType() string { return r.grantType }
func (r Request) ClientID() string  { return r.clientID }
func (r Request) Scope() string     { return r.scope }

// Scopes devuelve la lista de scopes pedidos (space-delimited).
func (r Request) Scopes() []string { return validation.SplitScope(r.scope) }

// Param devuelve el primer valor del parámetro name.
func (r Request) Param(name string) (string, bool) {
	for _, p := range r.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Params devuelve una copia de los parámetros en orden.
func (r Request) Params() []Param { return slices.Clone(r.params) }

// Códigos de error OAuth2 producidos por los validadores.
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorUnauthorizedClient   = "unauthorized_client"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorInvalidScope         = "invalid_scope"

	// DescriptionInvalidCredential es la descripción de credenciales que no matchean.
	DescriptionInvalidCredential = "invalid_credential"
)

// Success es el resultado de un grant válido.
type Success struct {
	Subject          string
	AuthMethods      []string
	Scopes           []string
	IdentityProvider string
	AuthTime         time.Time
	Extra            map[string]claims.Value
}

// Failure es un rechazo del grant con código y descripción OAuth2.
type Failure struct {
	Code        string
	Description string
}

// Outcome tiene exactamente una de sus variantes. El zero value no tiene
// ninguna y el orchestrator lo trata como defecto del validador.
type Outcome struct {
	success *Success
	failure *Failure
}

func Succeed(s Success) Outcome { return Outcome{success: &s} }

func Fail(code, description string) Outcome {
	return Outcome{failure: &Failure{Code: code, Description: description}}
}

func (o Outcome) Success() (Success, bool) {
	if o.success == nil || o.failure != nil {
		return Success{}, false
	}
	return *o.success, true
}

func (o Outcome) Failure() (Failure, bool) {
	if o.failure == nil || o.success != nil {
		return Failure{}, false
	}
	return *o.failure, true
}

// Valid indica que exactamente una variante está presente.
func (o Outcome) Valid() bool { return (o.success == nil) != (o.failure == nil) }
