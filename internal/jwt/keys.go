package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// SignerConfig describe de dónde sale la clave de firma.
type SignerConfig struct {
	Alg        string // EdDSA | RS256 | HS256 (default EdDSA)
	KeyFile    string // PEM (PKCS8 para EdDSA, PKCS1/PKCS8 para RSA)
	KID        string
	HMACSecret string
}

// LoadSigner construye el Signer del deployment. Con EdDSA y sin KeyFile genera
// una clave efímera en memoria (solo dev: los tokens no sobreviven un restart).
func LoadSigner(cfg SignerConfig) (*MethodSigner, bool, error) {
	alg := strings.TrimSpace(cfg.Alg)
	if alg == "" {
		alg = jwtv5.SigningMethodEdDSA.Alg()
	}

	switch strings.ToUpper(alg) {
	case "EDDSA":
		if cfg.KeyFile == "" {
			_, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return nil, false, err
			}
			s, err := NewEd25519Signer(priv, cfg.KID)
			return s, true, err
		}
		b, err := os.ReadFile(filepath.Clean(cfg.KeyFile))
		if err != nil {
			return nil, false, err
		}
		k, err := jwtv5.ParseEdPrivateKeyFromPEM(b)
		if err != nil {
			return nil, false, fmt.Errorf("jwt: parse ed25519 key: %w", err)
		}
		priv, ok := k.(ed25519.PrivateKey)
		if !ok {
			return nil, false, errors.New("jwt: key file is not ed25519")
		}
		s, err := NewEd25519Signer(priv, cfg.KID)
		return s, false, err

	case "RS256":
		if cfg.KeyFile == "" {
			return nil, false, errors.New("jwt: RS256 requires key_file")
		}
		b, err := os.ReadFile(filepath.Clean(cfg.KeyFile))
		if err != nil {
			return nil, false, err
		}
		priv, err := jwtv5.ParseRSAPrivateKeyFromPEM(b)
		if err != nil {
			return nil, false, fmt.Errorf("jwt: parse rsa key: %w", err)
		}
		s, err := NewRSASigner(priv, cfg.KID)
		return s, false, err

	case "HS256":
		s, err := NewHMACSigner([]byte(cfg.HMACSecret), cfg.KID)
		return s, false, err

	default:
		return nil, false, fmt.Errorf("jwt: unsupported alg %q", alg)
	}
}

// GenerateEd25519PEM genera una clave Ed25519 nueva en PEM PKCS8.
func GenerateEd25519PEM() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
