// Package token genera material aleatorio para secretos de configuración.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinSecretBytes es el mínimo aceptado para signing.hmac_secret con HS256.
const MinSecretBytes = 32

// GenerateSecret devuelve n bytes aleatorios en base64url sin padding.
func GenerateSecret(n int) (string, error) {
	if n < MinSecretBytes {
		return "", fmt.Errorf("token: secret must be at least %d bytes", MinSecretBytes)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
