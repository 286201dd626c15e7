package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `
app:
  app_env: dev
token:
  issuer: https://idsvr4
  extra_claims: [nbf, auth_time, jti]
signing:
  key_file: keys/ed25519.pem
clients:
  - id: roclient
    allowed_scopes: [api1, api2]
    grant_types: [password]
users:
  - username: bob
    password: bob
extension_grants:
  - name: custom
    rules:
      succeed:
        subject: bob
        claims:
          tier: gold
response:
  extensions:
    dto:
      string_value: some_string
      int_value: 42
`

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, []string{"/connect/token", "/oauth2/token"}, c.Server.TokenPaths)
	assert.Equal(t, []string{"api"}, c.Token.Audience)
	assert.Equal(t, time.Hour, c.TokenLifetime())
	assert.Equal(t, time.Minute, c.RateWindow())
	assert.Equal(t, "EdDSA", c.Signing.Alg)
	assert.Equal(t, "memory", c.Rate.Backend)
	require.Len(t, c.ExtensionGrants, 1)
	assert.Equal(t, "gold", c.ExtensionGrants[0].Rules["succeed"].Claims["tier"])
	assert.Equal(t, yaml.MappingNode, c.Response.Extensions.Kind)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_ISSUER", "https://other")
	t.Setenv("TOKEN_AUDIENCE", "api, billing")
	t.Setenv("TOKEN_LIFETIME", "5m")
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("RATE_ENABLED", "true")
	t.Setenv("RATE_MAX_REQUESTS", "5")

	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "https://other", c.Token.Issuer)
	assert.Equal(t, []string{"api", "billing"}, c.Token.Audience)
	assert.Equal(t, 5*time.Minute, c.TokenLifetime())
	assert.Equal(t, ":9999", c.Server.Addr)
	assert.True(t, c.Rate.Enabled)
	assert.Equal(t, 5, c.Rate.MaxRequests)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"missing issuer":  "token: {lifetime: 1h}\n",
		"bad lifetime":    "token: {issuer: x, lifetime: soon}\n",
		"short lifetime":  "token: {issuer: x, lifetime: 10ms}\n",
		"unknown extra":   "token: {issuer: x, extra_claims: [foo]}\n",
		"bad alg":         "token: {issuer: x}\nsigning: {alg: none}\n",
		"short hmac":      "token: {issuer: x}\nsigning: {alg: HS256, hmac_secret: short}\n",
		"rsa without key": "token: {issuer: x}\nsigning: {alg: RS256}\n",
		"dup client":      "token: {issuer: x}\nclients: [{id: a}, {id: a}]\n",
		"bad scope":       "token: {issuer: x}\nclients: [{id: a, allowed_scopes: ['a b']}]\n",
		"user no pass":    "token: {issuer: x}\nusers: [{username: bob}]\n",
		"dup grant":       "token: {issuer: x}\nextension_grants: [{name: password}]\n",
		"rule no subject": "token: {issuer: x}\nextension_grants: [{name: custom, rules: {ok: {}}}]\n",
		"prod ephemeral":  "app: {app_env: prod}\ntoken: {issuer: x}\n",
		"redis no addr":   "token: {issuer: x}\nrate: {enabled: true, backend: redis}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ResolvesKeyFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keys", "ed25519.pem"), c.Signing.KeyFile)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
