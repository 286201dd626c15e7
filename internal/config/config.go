package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/tokend/internal/validation"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env         string `yaml:"app_env"`
		LogLevel    string `yaml:"log_level"`
		ServiceName string `yaml:"service_name"`
	} `yaml:"app"`

	Server struct {
		Addr              string   `yaml:"addr"`
		ReadHeaderTimeout string   `yaml:"read_header_timeout"`
		ShutdownTimeout   string   `yaml:"shutdown_timeout"`
		TokenPaths        []string `yaml:"token_paths"`
		// TrustProxyHeaders: tomar la IP de X-Forwarded-For (solo detrás de un proxy)
		TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
	} `yaml:"server"`

	Token struct {
		Issuer   string   `yaml:"issuer"`
		Audience []string `yaml:"audience"`
		Lifetime string   `yaml:"lifetime"`
		// nbf | auth_time | jti
		ExtraClaims []string `yaml:"extra_claims"`
	} `yaml:"token"`

	Signing struct {
		Alg        string `yaml:"alg"` // EdDSA | RS256 | HS256
		KeyFile    string `yaml:"key_file"`
		KID        string `yaml:"kid"`
		HMACSecret string `yaml:"hmac_secret"`
	} `yaml:"signing"`

	Clients []Client `yaml:"clients"`
	Users   []User   `yaml:"users"`

	ExtensionGrants []ExtensionGrant `yaml:"extension_grants"`

	Response struct {
		// Extensions se conserva como nodo para respetar el orden del archivo.
		Extensions yaml.Node `yaml:"extensions"`
	} `yaml:"response"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Backend     string `yaml:"backend"` // memory | redis
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Redis       struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`
}

type Client struct {
	ID            string   `yaml:"id"`
	AllowedScopes []string `yaml:"allowed_scopes"`
	GrantTypes    []string `yaml:"grant_types"`
}

// User lleva password_hash (argon2id PHC) o, solo en dev, password en claro.
type User struct {
	Username     string `yaml:"username"`
	Subject      string `yaml:"subject"`
	PasswordHash string `yaml:"password_hash"`
	Password     string `yaml:"password"`
}

type ExtensionGrant struct {
	Name  string          `yaml:"name"`
	Param string          `yaml:"param"`
	AMR   string          `yaml:"amr"`
	Rules map[string]Rule `yaml:"rules"`
}

type Rule struct {
	Subject          string         `yaml:"subject"`
	IdentityProvider string         `yaml:"idp"`
	Claims           map[string]any `yaml:"claims"`
}

// Load lee el YAML, aplica defaults y overrides por env y valida.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// key_file relativo => relativo al directorio del YAML
	if p := strings.TrimSpace(c.Signing.KeyFile); p != "" && !filepath.IsAbs(p) {
		c.Signing.KeyFile = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}
	return c, nil
}

// Parse es Load sin archivo (tests, config embebida).
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.setDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.ServiceName == "" {
		c.App.ServiceName = "tokend"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadHeaderTimeout == "" {
		c.Server.ReadHeaderTimeout = "5s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if len(c.Server.TokenPaths) == 0 {
		c.Server.TokenPaths = []string{"/connect/token", "/oauth2/token"}
	}
	if len(c.Token.Audience) == 0 {
		c.Token.Audience = []string{"api"}
	}
	if c.Token.Lifetime == "" {
		c.Token.Lifetime = "1h"
	}
	if c.Signing.Alg == "" {
		c.Signing.Alg = "EdDSA"
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "tokend:rl:"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// TOKEN
	if v, ok := getEnvStr("TOKEN_ISSUER"); ok {
		c.Token.Issuer = v
	}
	if v, ok := getEnvCSV("TOKEN_AUDIENCE"); ok && len(v) > 0 {
		c.Token.Audience = v
	}
	if v, ok := getEnvStr("TOKEN_LIFETIME"); ok {
		c.Token.Lifetime = v
	}

	// SIGNING
	if v, ok := getEnvStr("SIGNING_ALG"); ok {
		c.Signing.Alg = v
	}
	if v, ok := getEnvStr("SIGNING_KEY_FILE"); ok {
		c.Signing.KeyFile = v
	}
	if v, ok := getEnvStr("SIGNING_HMAC_SECRET"); ok {
		c.Signing.HMACSecret = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_BACKEND"); ok {
		c.Rate.Backend = strings.ToLower(v)
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
}

// TokenLifetime devuelve token.lifetime ya parseado (Validate garantiza que es válido).
func (c *Config) TokenLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Token.Lifetime)
	return d
}

func (c *Config) RateWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Window)
	return d
}

func (c *Config) ReadHeaderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadHeaderTimeout)
	return d
}

func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// Validate junta todos los problemas en un único error.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if strings.TrimSpace(c.Token.Issuer) == "" {
		add("token.issuer is required")
	}
	if d, err := time.ParseDuration(c.Token.Lifetime); err != nil {
		add("token.lifetime: %v", err)
	} else if d < time.Second {
		add("token.lifetime must be at least 1s")
	}
	for _, e := range c.Token.ExtraClaims {
		switch strings.TrimSpace(e) {
		case "nbf", "auth_time", "jti":
		default:
			add("token.extra_claims: unknown claim %q", e)
		}
	}
	for _, k := range []struct{ name, v string }{
		{"server.read_header_timeout", c.Server.ReadHeaderTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"rate.window", c.Rate.Window},
	} {
		if _, err := time.ParseDuration(k.v); err != nil {
			add("%s: %v", k.name, err)
		}
	}
	for _, p := range c.Server.TokenPaths {
		if !strings.HasPrefix(p, "/") {
			add("server.token_paths: %q must start with /", p)
		}
	}

	// Guardia: en prod no se aceptan claves efímeras ni passwords en claro.
	prod := strings.EqualFold(c.App.Env, "prod")
	switch strings.ToUpper(c.Signing.Alg) {
	case "EDDSA":
		if prod && c.Signing.KeyFile == "" {
			add("signing.key_file is required in prod")
		}
	case "RS256":
		if c.Signing.KeyFile == "" {
			add("signing.key_file is required for RS256")
		}
	case "HS256":
		if len(c.Signing.HMACSecret) < 32 {
			add("signing.hmac_secret must be at least 32 bytes")
		}
	default:
		add("signing.alg: unsupported %q", c.Signing.Alg)
	}

	seen := map[string]bool{}
	for i, cl := range c.Clients {
		if strings.TrimSpace(cl.ID) == "" {
			add("clients[%d].id is required", i)
		} else if seen[cl.ID] {
			add("clients[%d]: duplicate id %q", i, cl.ID)
		}
		seen[cl.ID] = true
		for _, s := range validation.InvalidScopes(cl.AllowedScopes) {
			add("clients[%d]: invalid scope %q", i, s)
		}
	}
	for i, u := range c.Users {
		if u.Username == "" {
			add("users[%d].username is required", i)
		}
		if u.PasswordHash == "" && u.Password == "" {
			add("users[%d]: password_hash or password is required", i)
		}
		if prod && u.Password != "" {
			add("users[%d]: plain password not allowed in prod", i)
		}
	}
	grants := map[string]bool{"password": true}
	for i, g := range c.ExtensionGrants {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			add("extension_grants[%d].name is required", i)
			continue
		}
		if grants[name] {
			add("extension_grants[%d]: grant type %q already registered", i, name)
		}
		grants[name] = true
		for k, r := range g.Rules {
			if strings.TrimSpace(r.Subject) == "" {
				add("extension_grants[%d].rules.%s.subject is required", i, k)
			}
		}
	}

	switch c.Rate.Backend {
	case "memory":
	case "redis":
		if c.Rate.Enabled && c.Rate.Redis.Addr == "" {
			add("rate.redis.addr is required for the redis backend")
		}
	default:
		add("rate.backend: unsupported %q", c.Rate.Backend)
	}
	if c.Rate.MaxRequests < 0 {
		add("rate.max_requests must be positive")
	}

	return errors.Join(errs...)
}
