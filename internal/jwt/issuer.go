package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/tokend/internal/claims"
)

// ErrSigning envuelve cualquier falla del signer. No es recuperable por request:
// indica un deployment roto (clave inválida, HSM caído, etc).
var ErrSigning = errors.New("jwt: signing failed")

// header se serializa siempre en el mismo orden (alg, kid, typ).
type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
	Typ string `json:"typ"`
}

// Issue serializa el Set y lo firma: header.payload.signature en base64url sin padding.
// El payload conserva el orden de inserción de los claims.
func Issue(set *claims.Set, s Signer) (string, error) {
	if set == nil {
		return "", errors.New("jwt: nil claim set")
	}
	if s == nil {
		return "", fmt.Errorf("%w: no signer configured", ErrSigning)
	}

	hb, err := json.Marshal(header{Alg: s.Algorithm(), Kid: s.KeyID(), Typ: "JWT"})
	if err != nil {
		return "", err
	}
	pb, err := set.MarshalJSON()
	if err != nil {
		return "", err
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(hb) + "." + enc.EncodeToString(pb)

	sig, err := s.Sign(signingInput)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	if len(sig) == 0 {
		return "", fmt.Errorf("%w: empty signature", ErrSigning)
	}
	return signingInput + "." + enc.EncodeToString(sig), nil
}

// split valida que el token tenga exactamente tres segmentos.
func split(token string) ([]string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("jwt: expected 3 segments, got %d", len(parts))
	}
	return parts, nil
}

// DecodePayload decodifica el segmento de payload SIN verificar la firma.
// Útil para inspección (CLI/tests); para validar usar Verify.
func DecodePayload(token string) (*claims.Set, error) {
	parts, err := split(token)
	if err != nil {
		return nil, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("jwt: payload segment: %w", err)
	}
	return claims.Parse(raw)
}
