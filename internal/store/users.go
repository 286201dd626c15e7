package store

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/tokend/internal/security/password"
)

// UserStore valida credenciales de resource owner.
// ok=false significa credenciales inválidas; err != nil es una falla interna.
type UserStore interface {
	CheckCredentials(ctx context.Context, username, pass string) (subject string, ok bool, err error)
}

// User es un usuario local. PasswordHash (argon2id PHC) tiene prioridad sobre Password.
type User struct {
	Username     string
	Subject      string // vacío => Username
	PasswordHash string
	Password     string // solo configs dev
}

// Users es un UserStore en memoria.
type Users struct {
	byName map[string]User
	// dummy se verifica cuando el usuario no existe, para no filtrar su existencia por timing.
	dummy string
}

func NewUsers(list ...User) (*Users, error) {
	m := make(map[string]User, len(list))
	for _, u := range list {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return nil, errors.New("store: user with empty username")
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("store: duplicate user %q", name)
		}
		if u.PasswordHash == "" && u.Password == "" {
			return nil, fmt.Errorf("store: user %q has no credentials", name)
		}
		if u.PasswordHash != "" && !password.IsPHC(u.PasswordHash) {
			return nil, fmt.Errorf("store: user %q: %w", name, password.ErrMalformedHash)
		}
		if u.Subject == "" {
			u.Subject = name
		}
		u.Username = name
		m[name] = u
	}
	dummy, err := password.Hash(password.Default, "dummy-password")
	if err != nil {
		return nil, err
	}
	return &Users{byName: m, dummy: dummy}, nil
}

func (s *Users) CheckCredentials(ctx context.Context, username, pass string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	u, found := s.byName[username]
	if !found {
		_, _ = password.Verify(pass, s.dummy)
		return "", false, nil
	}
	if u.PasswordHash != "" {
		ok, err := password.Verify(pass, u.PasswordHash)
		if err != nil {
			return "", false, fmt.Errorf("store: user %q: %w", username, err)
		}
		if !ok {
			return "", false, nil
		}
		return u.Subject, true, nil
	}
	if subtle.ConstantTimeCompare([]byte(pass), []byte(u.Password)) != 1 {
		return "", false, nil
	}
	return u.Subject, true, nil
}
