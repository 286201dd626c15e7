package jwt

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Signer produce la firma sobre el signing input (base64url(header).base64url(payload)).
// La custodia de claves queda fuera de este paquete.
type Signer interface {
	Algorithm() string
	KeyID() string
	Sign(signingInput string) ([]byte, error)
}

// MethodSigner firma con un jwtv5.SigningMethod y su clave privada.
type MethodSigner struct {
	Method jwtv5.SigningMethod
	Key    any    // ed25519.PrivateKey | *rsa.PrivateKey | []byte (HMAC)
	KID    string // header "kid"
}

func (s *MethodSigner) Algorithm() string { return s.Method.Alg() }

func (s *MethodSigner) KeyID() string { return s.KID }

func (s *MethodSigner) Sign(signingInput string) ([]byte, error) {
	return s.Method.Sign(signingInput, s.Key)
}

// VerificationKey devuelve la clave que valida las firmas de este signer.
func (s *MethodSigner) VerificationKey() any {
	switch k := s.Key.(type) {
	case ed25519.PrivateKey:
		return k.Public()
	case *rsa.PrivateKey:
		return &k.PublicKey
	case crypto.Signer:
		return k.Public()
	default:
		// HMAC: la misma clave
		return s.Key
	}
}

// NewEd25519Signer crea un signer EdDSA. Si kid es vacío se deriva de la pública.
func NewEd25519Signer(priv ed25519.PrivateKey, kid string) (*MethodSigner, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.New("jwt: invalid ed25519 private key")
	}
	if kid == "" {
		kid = thumbprint(priv.Public().(ed25519.PublicKey))
	}
	return &MethodSigner{Method: jwtv5.SigningMethodEdDSA, Key: priv, KID: kid}, nil
}

// NewRSASigner crea un signer RS256.
func NewRSASigner(priv *rsa.PrivateKey, kid string) (*MethodSigner, error) {
	if priv == nil {
		return nil, errors.New("jwt: nil rsa private key")
	}
	if kid == "" {
		kid = thumbprint(priv.PublicKey.N.Bytes())
	}
	return &MethodSigner{Method: jwtv5.SigningMethodRS256, Key: priv, KID: kid}, nil
}

// NewHMACSigner crea un signer HS256. Secretos de menos de 32 bytes se rechazan.
func NewHMACSigner(secret []byte, kid string) (*MethodSigner, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt: hmac secret too short (%d bytes, min 32)", len(secret))
	}
	return &MethodSigner{Method: jwtv5.SigningMethodHS256, Key: secret, KID: kid}, nil
}

func thumbprint(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
