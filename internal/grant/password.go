package grant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/tokend/internal/claims"
	"github.com/dropDatabas3/tokend/internal/store"
)

// GrantTypePassword es el grant resource owner password credentials (RFC 6749 §4.3).
const GrantTypePassword = "password"

// AuthMethodPassword es el amr de usuarios autenticados con password.
const AuthMethodPassword = "password"

// PasswordValidator valida username/password contra el UserStore.
type PasswordValidator struct {
	Clients store.ClientStore
	Users   store.UserStore
	Now     func() time.Time
}

func NewPasswordValidator(clients store.ClientStore, users store.UserStore) *PasswordValidator {
	return &PasswordValidator{Clients: clients, Users: users, Now: time.Now}
}

func (v *PasswordValidator) GrantType() string { return GrantTypePassword }

func (v *PasswordValidator) Validate(ctx context.Context, req Request) (Outcome, error) {
	if v.Users == nil {
		return Outcome{}, errors.New("grant: no user store configured")
	}
	username, _ := req.Param("username")
	pass, _ := req.Param("password")
	if username == "" || pass == "" {
		return Fail(ErrorInvalidRequest, "missing_credentials"), nil
	}

	scopes, f, err := authorize(ctx, v.Clients, req)
	if err != nil {
		return Outcome{}, err
	}
	if f != nil {
		return failed(f), nil
	}

	subject, ok, err := v.Users.CheckCredentials(ctx, username, pass)
	if err != nil {
		return Outcome{}, fmt.Errorf("grant: credential check: %w", err)
	}
	if !ok {
		return Fail(ErrorInvalidGrant, DescriptionInvalidCredential), nil
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return Succeed(Success{
		Subject:          subject,
		AuthMethods:      []string{AuthMethodPassword},
		Scopes:           scopes,
		IdentityProvider: claims.DefaultIdentityProvider,
		AuthTime:         now(),
	}), nil
}
