// Package controllers contiene los handlers HTTP del token endpoint y de salud.
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/tokend/internal/grant"
	httperrors "github.com/dropDatabas3/tokend/internal/http/errors"
	"github.com/dropDatabas3/tokend/internal/metrics"
	"github.com/dropDatabas3/tokend/internal/observability/logger"
	"github.com/dropDatabas3/tokend/internal/response"
	"github.com/dropDatabas3/tokend/internal/token"
)

// TokenObserver registra el resultado de cada token request (ver metrics.Metrics).
type TokenObserver interface {
	ObserveToken(grantType, result string, d time.Duration)
}

// Endpoint es lo que el controller necesita del pipeline.
type Endpoint interface {
	Handle(ctx context.Context, req grant.Request) (*response.Response, error)
	Reject(ctx context.Context, code, description string) (*response.Response, error)
	GrantTypes() []string
}

// TokenController maneja POST /connect/token.
type TokenController struct {
	endpoint Endpoint
	obs      TokenObserver
	known    map[string]bool
}

func NewTokenController(endpoint Endpoint, obs TokenObserver) *TokenController {
	known := map[string]bool{}
	for _, gt := range endpoint.GrantTypes() {
		known[gt] = true
	}
	return &TokenController{endpoint: endpoint, obs: obs, known: known}
}

func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Token"))
	start := time.Now()

	params, err := parseForm(w, r)
	if err != nil {
		log.Debug("invalid token request body", logger.Err(err))
		desc := "invalid_form"
		if errors.Is(err, errDuplicatedKey) {
			desc = "duplicate_parameter"
		} else if errors.Is(err, errBodyTooLarge) {
			desc = "body_too_large"
		}
		c.reject(w, r, start, grant.ErrorInvalidRequest, desc)
		return
	}

	cid, err := clientID(r, params)
	if err != nil {
		log.Debug("invalid client authentication", logger.Err(err))
		c.reject(w, r, start, grant.ErrorInvalidClient, "invalid_client_authentication")
		return
	}

	gt := strings.TrimSpace(lookup(params, "grant_type"))
	if gt == "" {
		c.reject(w, r, start, grant.ErrorInvalidRequest, "missing_grant_type")
		return
	}

	req := grant.NewRequest(gt, cid, lookup(params, "scope"), params)
	resp, err := c.endpoint.Handle(ctx, req)
	c.write(w, r, gt, start, resp, err)
}

func (c *TokenController) reject(w http.ResponseWriter, r *http.Request, start time.Time, code, desc string) {
	resp, err := c.endpoint.Reject(r.Context(), code, desc)
	c.write(w, r, "", start, resp, err)
}

func (c *TokenController) write(w http.ResponseWriter, r *http.Request, grantType string, start time.Time, resp *response.Response, err error) {
	log := logger.From(r.Context())
	if err != nil {
		result := metrics.ResultConfigurationError
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// el cliente se fue: no hay a quién responder
			c.observe(grantType, metrics.ResultCanceled, start)
			log.Info("token request canceled", logger.Err(err))
			return
		case token.IsConfigurationError(err):
			httperrors.WriteError(w, httperrors.ErrConfiguration.WithCause(err))
		default:
			result = "internal_error"
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		}
		c.observe(grantType, result, start)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		log.Error("token response encoding failed", logger.Err(err))
		c.observe(grantType, metrics.ResultConfigurationError, start)
		httperrors.WriteError(w, httperrors.ErrConfiguration.WithCause(err))
		return
	}

	status := http.StatusOK
	result := metrics.ResultSuccess
	if resp.IsError() {
		result = resp.ErrorCode()
		status = statusFor(result)
		if status == http.StatusUnauthorized && r.Header.Get("Authorization") != "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="tokend"`)
		}
	}
	c.observe(grantType, result, start)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (c *TokenController) observe(grantType, result string, start time.Time) {
	if c.obs == nil {
		return
	}
	// el grant_type lo elige el cliente: no se usa como label si no está registrado
	if !c.known[grantType] {
		grantType = "-"
	}
	c.obs.ObserveToken(grantType, result, time.Since(start))
}

// statusFor mapea el código OAuth2 al status HTTP (RFC 6749 §5.2).
func statusFor(code string) int {
	if code == grant.ErrorInvalidClient {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}
