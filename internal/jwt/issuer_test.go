package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokend/internal/claims"
)

func sampleSet(t *testing.T) *claims.Set {
	t.Helper()
	now := time.Now().Unix()
	s := claims.NewSet()
	require.NoError(t, s.Add(claims.Issuer, claims.String("https://idsvr4")))
	require.NoError(t, s.Add(claims.Subject, claims.String("bob")))
	require.NoError(t, s.Add(claims.Audience, claims.String("api")))
	require.NoError(t, s.Add(claims.ClientID, claims.String("roclient")))
	require.NoError(t, s.Add(claims.IdentityProvider, claims.String("local")))
	require.NoError(t, s.Add(claims.Scope, claims.Strings("api1")))
	require.NoError(t, s.Add(claims.AuthMethods, claims.Strings("password")))
	require.NoError(t, s.Add(claims.IssuedAt, claims.Int(now)))
	require.NoError(t, s.Add(claims.Expiry, claims.Int(now+3600)))
	return s
}

func edSigner(t *testing.T) *MethodSigner {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	s, err := NewEd25519Signer(priv, "")
	require.NoError(t, err)
	return s
}

func TestIssue_ThreeSegmentsAndHeader(t *testing.T) {
	s := edSigner(t)
	tok, err := Issue(sampleSet(t), s)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.NotContains(t, p, "=")
	}

	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Equal(t, `{"alg":"EdDSA","kid":"`+s.KeyID()+`","typ":"JWT"}`, string(hb))
}

func TestIssue_PayloadRoundTrip(t *testing.T) {
	in := sampleSet(t)
	tok, err := Issue(in, edSigner(t))
	require.NoError(t, err)

	out, err := DecodePayload(tok)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
	assert.Equal(t, 9, out.Len())

	// el payload también es JSON plano válido para cualquier consumidor
	parts := strings.Split(tok, ".")
	raw, _ := base64.RawURLEncoding.DecodeString(parts[1])
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, 9)
}

func TestIssue_VerifiesWithJWTLibrary(t *testing.T) {
	s := edSigner(t)
	tok, err := Issue(sampleSet(t), s)
	require.NoError(t, err)

	set, err := Verify(tok, s.VerificationKey(), VerifyOptions{
		Algorithms: []string{"EdDSA"},
		Issuer:     "https://idsvr4",
	})
	require.NoError(t, err)
	sub, _ := set.Get(claims.Subject)
	assert.Equal(t, "bob", sub.Str())

	// otra clave no valida
	_, err = Verify(tok, edSigner(t).VerificationKey(), VerifyOptions{Algorithms: []string{"EdDSA"}})
	require.Error(t, err)

	// issuer distinto
	_, err = Verify(tok, s.VerificationKey(), VerifyOptions{Algorithms: []string{"EdDSA"}, Issuer: "https://other"})
	require.Error(t, err)
}

func TestIssue_HMACAndRSA(t *testing.T) {
	hs, err := NewHMACSigner([]byte(strings.Repeat("k", 32)), "hs-1")
	require.NoError(t, err)

	rk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	rs, err := NewRSASigner(rk, "")
	require.NoError(t, err)

	for _, s := range []*MethodSigner{hs, rs} {
		tok, err := Issue(sampleSet(t), s)
		require.NoError(t, err)
		_, err = Verify(tok, s.VerificationKey(), VerifyOptions{Algorithms: []string{s.Algorithm()}})
		require.NoError(t, err, s.Algorithm())
	}
}

func TestNewHMACSigner_ShortSecret(t *testing.T) {
	_, err := NewHMACSigner([]byte("short"), "")
	require.Error(t, err)
}

type failingSigner struct{}

func (failingSigner) Algorithm() string           { return "EdDSA" }
func (failingSigner) KeyID() string               { return "broken" }
func (failingSigner) Sign(string) ([]byte, error) { return nil, errors.New("hsm offline") }

func TestIssue_SignerFailureIsFatal(t *testing.T) {
	_, err := Issue(sampleSet(t), failingSigner{})
	require.ErrorIs(t, err, ErrSigning)

	_, err = Issue(sampleSet(t), nil)
	require.ErrorIs(t, err, ErrSigning)
}

func TestDecodePayload_BadSegments(t *testing.T) {
	_, err := DecodePayload("a.b")
	require.Error(t, err)
	_, err = DecodePayload("a.!!!.c")
	require.Error(t, err)
}

func TestLoadSigner_Ed25519FromPEM(t *testing.T) {
	pemBytes, err := GenerateEd25519PEM()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "signing.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	s, ephemeral, err := LoadSigner(SignerConfig{KeyFile: path, KID: "k1"})
	require.NoError(t, err)
	assert.False(t, ephemeral)
	assert.Equal(t, "EdDSA", s.Algorithm())
	assert.Equal(t, "k1", s.KeyID())
}

func TestLoadSigner_RSAFromPEM(t *testing.T) {
	rk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rk)})
	path := filepath.Join(t.TempDir(), "rsa.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	s, _, err := LoadSigner(SignerConfig{Alg: "RS256", KeyFile: path})
	require.NoError(t, err)
	assert.Equal(t, jwtv5.SigningMethodRS256.Alg(), s.Algorithm())
	assert.NotEmpty(t, s.KeyID())
}

func TestLoadSigner_EphemeralAndErrors(t *testing.T) {
	s, ephemeral, err := LoadSigner(SignerConfig{})
	require.NoError(t, err)
	assert.True(t, ephemeral)
	assert.Equal(t, "EdDSA", s.Algorithm())

	_, _, err = LoadSigner(SignerConfig{Alg: "RS256"})
	require.Error(t, err)
	_, _, err = LoadSigner(SignerConfig{Alg: "none"})
	require.Error(t, err)
}
