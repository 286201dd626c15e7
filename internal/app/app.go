// Package app arma el servicio a partir de la configuración: stores, grants,
// assembler, signer, extensiones, endpoint y router HTTP.
package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/tokend/internal/claims"
	"github.com/dropDatabas3/tokend/internal/config"
	"github.com/dropDatabas3/tokend/internal/grant"
	"github.com/dropDatabas3/tokend/internal/http/controllers"
	mw "github.com/dropDatabas3/tokend/internal/http/middlewares"
	"github.com/dropDatabas3/tokend/internal/http/router"
	"github.com/dropDatabas3/tokend/internal/jwt"
	"github.com/dropDatabas3/tokend/internal/metrics"
	"github.com/dropDatabas3/tokend/internal/rate"
	"github.com/dropDatabas3/tokend/internal/response"
	"github.com/dropDatabas3/tokend/internal/store"
	"github.com/dropDatabas3/tokend/internal/token"
)

// Options ajusta el armado (tests, CLI).
type Options struct {
	Version string
	// Metrics: si es nil se crea uno nuevo.
	Metrics *metrics.Metrics
	// Now reemplaza el reloj del assembler y los validadores.
	Now func() time.Time
}

// App es el servicio armado.
type App struct {
	Handler  http.Handler
	Endpoint *token.Endpoint
	Signer   *jwt.MethodSigner
	Metrics  *metrics.Metrics
	// Ephemeral indica que la clave de firma se generó en memoria.
	Ephemeral bool

	closers []func() error
}

// Close libera recursos (cliente redis).
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func New(cfg *config.Config, opts Options) (*App, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// 1. Stores
	clist := make([]store.Client, 0, len(cfg.Clients))
	for _, c := range cfg.Clients {
		clist = append(clist, store.Client{ID: c.ID, AllowedScopes: c.AllowedScopes, GrantTypes: c.GrantTypes})
	}
	clients, err := store.NewClients(clist...)
	if err != nil {
		return nil, err
	}
	ulist := make([]store.User, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		ulist = append(ulist, store.User{Username: u.Username, Subject: u.Subject, PasswordHash: u.PasswordHash, Password: u.Password})
	}
	users, err := store.NewUsers(ulist...)
	if err != nil {
		return nil, err
	}

	// 2. Grants
	pw := grant.NewPasswordValidator(clients, users)
	pw.Now = now
	validators := []grant.Validator{pw}
	for _, eg := range cfg.ExtensionGrants {
		v, err := extensionValidator(eg, clients)
		if err != nil {
			return nil, err
		}
		v.Now = now
		validators = append(validators, v)
	}
	registry, err := grant.NewRegistry(validators...)
	if err != nil {
		return nil, err
	}

	// 3. Claims + firma
	extras := make([]claims.Extra, 0, len(cfg.Token.ExtraClaims))
	for _, e := range cfg.Token.ExtraClaims {
		x, err := claims.ParseExtra(e)
		if err != nil {
			return nil, err
		}
		extras = append(extras, x)
	}
	asm := claims.NewAssembler(cfg.Token.Issuer, cfg.Token.Audience, cfg.TokenLifetime(), extras...)
	asm.Now = now

	signer, ephemeral, err := jwt.LoadSigner(jwt.SignerConfig{
		Alg:        cfg.Signing.Alg,
		KeyFile:    cfg.Signing.KeyFile,
		KID:        cfg.Signing.KID,
		HMACSecret: cfg.Signing.HMACSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}

	// 4. Extensiones de la respuesta
	fields, err := response.FromYAML(&cfg.Response.Extensions)
	if err != nil {
		return nil, fmt.Errorf("response.extensions: %w", err)
	}
	ext, err := response.NewStatic(fields)
	if err != nil {
		return nil, fmt.Errorf("response.extensions: %w", err)
	}

	// 5. Métricas + endpoint
	m := opts.Metrics
	if m == nil {
		if m, err = metrics.New(); err != nil {
			return nil, err
		}
	}
	ep, err := token.NewEndpoint(token.Deps{
		Registry:   registry,
		Assembler:  asm,
		Signer:     signer,
		Extensions: ext,
		Observer:   m,
	})
	if err != nil {
		return nil, err
	}

	a := &App{Endpoint: ep, Signer: signer, Metrics: m, Ephemeral: ephemeral}

	// 6. HTTP
	deps := router.Deps{
		Token:       controllers.NewTokenController(ep, m),
		Health:      controllers.NewHealthController(opts.Version, ep.GrantTypes()),
		TokenPaths:  cfg.Server.TokenPaths,
		Metrics:     m.Handler(),
		HTTPMetrics: m,
	}
	if cfg.Rate.Enabled {
		lim, closer := limiter(cfg)
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
		deps.RateLimit = &mw.RateLimitConfig{Limiter: lim, TrustProxy: cfg.Server.TrustProxyHeaders}
	}
	a.Handler = router.New(deps)
	return a, nil
}

func limiter(cfg *config.Config) (rate.Limiter, func() error) {
	if cfg.Rate.Backend == "redis" {
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
		return rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, cfg.RateWindow()), client.Close
	}
	return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow()), nil
}

func extensionValidator(eg config.ExtensionGrant, clients store.ClientStore) (*grant.ExtensionValidator, error) {
	rules := make(map[string]grant.Rule, len(eg.Rules))
	for k, r := range eg.Rules {
		cl := make(map[string]claims.Value, len(r.Claims))
		for name, raw := range r.Claims {
			v, err := claims.FromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("extension_grants.%s.rules.%s.claims.%s: %w", eg.Name, k, name, err)
			}
			cl[name] = v
		}
		rules[k] = grant.Rule{Subject: r.Subject, IdentityProvider: r.IdentityProvider, Claims: cl}
	}
	v, err := grant.NewExtensionValidator(strings.TrimSpace(eg.Name), eg.Param, rules, clients)
	if err != nil {
		return nil, err
	}
	v.AuthMethod = eg.AMR
	return v, nil
}

