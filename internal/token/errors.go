package token

import (
	"errors"
	"fmt"
)

// Stage identifica en qué paso del pipeline se detectó un defecto de configuración.
type Stage string

const (
	StageValidate Stage = "validate"
	StageAssemble Stage = "assemble"
	StageSign     Stage = "sign"
	StageEnrich   Stage = "enrich"
)

// ConfigurationError indica que el deployment está roto: claims incompletos,
// signer que falla, colisión de campos de extensión o un validador que falla
// internamente. Nunca se serializa como un error OAuth2.
type ConfigurationError struct {
	Stage     Stage
	GrantType string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.GrantType != "" {
		return fmt.Sprintf("token: configuration error at %s (grant_type=%s): %v", e.Stage, e.GrantType, e.Err)
	}
	return fmt.Sprintf("token: configuration error at %s: %v", e.Stage, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsConfigurationError reporta si err (o algo que envuelve) es un ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// errPanic envuelve un panic recuperado de un validador.
type errPanic struct{ v any }

func (e errPanic) Error() string { return fmt.Sprintf("validator panic: %v", e.v) }

// ErrInvalidOutcome: el validador devolvió un Outcome que no es ni Success ni Failure.
var ErrInvalidOutcome = errors.New("token: validator returned an invalid outcome")
