// Package token implementa el pipeline del token endpoint: resuelve el
// validador del grant, arma y firma el token o la respuesta de error, y
// aplica los campos de extensión del deployment.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/tokend/internal/claims"
	"github.com/dropDatabas3/tokend/internal/grant"
	"github.com/dropDatabas3/tokend/internal/jwt"
	"github.com/dropDatabas3/tokend/internal/observability/logger"
	"github.com/dropDatabas3/tokend/internal/response"
)

// DescriptionUnsupportedGrantType acompaña a unsupported_grant_type.
const DescriptionUnsupportedGrantType = "grant_type_not_supported"

// Deps son las dependencias de un Endpoint. Se arman una vez al arranque y
// nunca se mutan.
type Deps struct {
	Registry   *grant.Registry
	Assembler  *claims.Assembler
	Signer     jwt.Signer
	Extensions response.ExtensionProvider // opcional
	Observer   Observer                   // opcional
}

// Endpoint procesa token requests. Es seguro para uso concurrente: no tiene
// estado mutable.
type Endpoint struct {
	registry  *grant.Registry
	assembler *claims.Assembler
	signer    jwt.Signer
	ext       response.ExtensionProvider
	obs       Observer
	expiresIn int64
}

func NewEndpoint(d Deps) (*Endpoint, error) {
	if d.Registry == nil {
		return nil, errors.New("token: registry is required")
	}
	if d.Assembler == nil {
		return nil, errors.New("token: assembler is required")
	}
	if d.Signer == nil {
		return nil, errors.New("token: signer is required")
	}
	if d.Assembler.Lifetime < time.Second {
		return nil, fmt.Errorf("token: lifetime must be at least 1s, got %s", d.Assembler.Lifetime)
	}
	ext := d.Extensions
	if ext == nil {
		ext = response.None
	}

	// una colisión es un defecto del deployment: mejor fallar al arranque
	for _, base := range []*response.Response{response.Success("", 1), response.Error("", "")} {
		if _, err := response.Enrich(base, ext); err != nil {
			return nil, &ConfigurationError{Stage: StageEnrich, Err: err}
		}
	}

	return &Endpoint{
		registry:  d.Registry,
		assembler: d.Assembler,
		signer:    d.Signer,
		ext:       ext,
		obs:       d.Observer,
		expiresIn: int64(d.Assembler.Lifetime / time.Second),
	}, nil
}

// ExpiresIn es el expires_in de las respuestas exitosas, en segundos.
func (e *Endpoint) ExpiresIn() int64 { return e.expiresIn }

// GrantTypes lista los grant types registrados.
func (e *Endpoint) GrantTypes() []string { return e.registry.GrantTypes() }

// Handle procesa un request y devuelve la respuesta final (success o error
// OAuth2). Un error devuelto es un *ConfigurationError o ctx.Err(); en ese
// caso no hay respuesta.
func (e *Endpoint) Handle(ctx context.Context, req grant.Request) (*response.Response, error) {
	gt := req.GrantType()
	p := &pipeline{
		e:     e,
		ctx:   ctx,
		gt:    gt,
		state: StateReceived,
		log:   logger.From(ctx).With(logger.Layer("token"), logger.GrantType(gt), logger.ClientID(req.ClientID())),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var base *response.Response
	v, err := e.registry.Resolve(gt)
	switch {
	case errors.Is(err, grant.ErrNotFound):
		p.to(StateErrorBuilding)
		base = response.Error(grant.ErrorUnsupportedGrantType, DescriptionUnsupportedGrantType)
	case err != nil:
		return nil, p.fail(StageValidate, err)
	default:
		p.to(StateDispatched)
		out, err := validate(ctx, v, req)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
				return nil, cerr
			}
			return nil, p.fail(StageValidate, err)
		}
		p.to(StateValidated)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s, ok := out.Success(); ok {
			p.to(StateIssuing)
			if base, err = p.issue(req, s); err != nil {
				return nil, err
			}
		} else {
			f, _ := out.Failure()
			p.to(StateErrorBuilding)
			base = response.Error(f.Code, f.Description)
		}
	}

	p.to(StateEnriching)
	resp, err := response.Enrich(base, e.ext)
	if err != nil {
		return nil, p.fail(StageEnrich, err)
	}
	p.to(StateSerialized)

	if resp.IsError() {
		p.log.Warn("token request rejected", logger.ErrorCode(resp.ErrorCode()))
	} else {
		p.log.Info("token issued", logger.TokenID(p.jti))
	}
	return resp, nil
}

// Reject arma una respuesta de error OAuth2 para un request que el host no
// pudo convertir en grant.Request (form inválido, grant_type ausente, etc.).
// Lleva las mismas extensiones que cualquier otra respuesta.
func (e *Endpoint) Reject(ctx context.Context, code, description string) (*response.Response, error) {
	p := &pipeline{
		e:     e,
		ctx:   ctx,
		state: StateReceived,
		log:   logger.From(ctx).With(logger.Layer("token")),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.to(StateErrorBuilding)
	p.to(StateEnriching)
	resp, err := response.Enrich(response.Error(code, description), e.ext)
	if err != nil {
		return nil, p.fail(StageEnrich, err)
	}
	p.to(StateSerialized)
	p.log.Warn("token request rejected", logger.ErrorCode(code), logger.String("error_description", description))
	return resp, nil
}

// validate invoca el validador recuperando panics. Un Outcome inválido es un
// defecto del validador.
func validate(ctx context.Context, v grant.Validator, req grant.Request) (out grant.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = grant.Outcome{}, errPanic{v: r}
		}
	}()
	out, err = v.Validate(ctx, req)
	if err != nil {
		return grant.Outcome{}, err
	}
	if !out.Valid() {
		return grant.Outcome{}, ErrInvalidOutcome
	}
	if f, ok := out.Failure(); ok && f.Code == "" {
		return grant.Outcome{}, fmt.Errorf("%w: failure without error code", ErrInvalidOutcome)
	}
	return out, nil
}

// pipeline es el estado de un único request.
type pipeline struct {
	e     *Endpoint
	ctx   context.Context
	gt    string
	state State
	jti   string
	log   *zap.Logger
}

func (p *pipeline) to(next State) {
	if !CanTransition(p.state, next) {
		p.log.DPanic("invalid state transition", logger.State(string(p.state)), logger.String("next", string(next)))
	}
	p.log.Debug("transition", logger.State(string(next)), logger.String("from", string(p.state)))
	if p.e.obs != nil {
		p.e.obs.Transition(p.ctx, p.gt, p.state, next)
	}
	p.state = next
}

func (p *pipeline) fail(stage Stage, err error) error {
	ce := &ConfigurationError{Stage: stage, GrantType: p.gt, Err: err}
	p.log.Error("configuration error", logger.Stage(string(stage)), logger.State(string(p.state)), logger.Err(err))
	return ce
}

func (p *pipeline) issue(req grant.Request, s grant.Success) (*response.Response, error) {
	set, err := p.e.assembler.Assemble(claims.Grant{
		Subject:          s.Subject,
		ClientID:         req.ClientID(),
		IdentityProvider: s.IdentityProvider,
		Scopes:           s.Scopes,
		AuthMethods:      s.AuthMethods,
		AuthTime:         s.AuthTime,
		Extra:            s.Extra,
	})
	if err != nil {
		return nil, p.fail(StageAssemble, err)
	}
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}

	tok, err := jwt.Issue(set, p.e.signer)
	if err != nil {
		return nil, p.fail(StageSign, err)
	}
	if v, ok := set.Get(claims.TokenID); ok {
		p.jti = v.Str()
	}
	return response.Success(tok, p.e.expiresIn), nil
}
