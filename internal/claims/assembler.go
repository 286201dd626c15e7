package claims

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrIncomplete indica que falta un dato obligatorio para armar el token.
// Es un error de configuración, nunca un error del cliente.
var ErrIncomplete = errors.New("claims: incomplete grant")

// DefaultIdentityProvider es el idp de los usuarios locales.
const DefaultIdentityProvider = "local"

// Extra es un claim estándar opcional que el deployment puede habilitar.
type Extra string

const (
	ExtraNotBefore Extra = NotBefore
	ExtraAuthTime  Extra = AuthTime
	ExtraTokenID   Extra = TokenID
)

// ParseExtra valida el nombre de un extra configurado.
func ParseExtra(s string) (Extra, error) {
	switch e := Extra(strings.TrimSpace(s)); e {
	case ExtraNotBefore, ExtraAuthTime, ExtraTokenID:
		return e, nil
	default:
		return "", fmt.Errorf("claims: unknown extra claim %q", s)
	}
}

// Grant es la salida validada de un grant, lo único que el Assembler necesita
// para producir los claims.
type Grant struct {
	Subject          string
	ClientID         string
	IdentityProvider string
	Scopes           []string
	AuthMethods      []string
	// AuthTime es el momento de la autenticación; zero => iat.
	AuthTime time.Time
	Extra    map[string]Value
}

// Assembler arma el Set canónico de un token emitido.
type Assembler struct {
	Issuer   string
	Audience []string
	Lifetime time.Duration
	Extras   []Extra

	// Now y NewID son inyectables para tests.
	Now   func() time.Time
	NewID func() string
}

// NewAssembler crea un Assembler con reloj y generador de jti por defecto.
func NewAssembler(issuer string, audience []string, lifetime time.Duration, extras ...Extra) *Assembler {
	return &Assembler{
		Issuer:   strings.TrimRight(issuer, "/"),
		Audience: audience,
		Lifetime: lifetime,
		Extras:   extras,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// Assemble produce los claims del token. Solo iat/exp (y nbf/auth_time/jti si
// están habilitados) dependen del reloj; el resto es función pura del grant.
func (a *Assembler) Assemble(g Grant) (*Set, error) {
	if strings.TrimSpace(g.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrIncomplete)
	}
	if a.Issuer == "" {
		return nil, fmt.Errorf("%w: missing issuer", ErrIncomplete)
	}
	if len(a.Audience) == 0 {
		return nil, fmt.Errorf("%w: missing audience", ErrIncomplete)
	}
	if a.Lifetime <= 0 {
		return nil, fmt.Errorf("%w: non-positive lifetime", ErrIncomplete)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	iat := now().Unix()
	exp := iat + int64(a.Lifetime/time.Second)

	idp := g.IdentityProvider
	if idp == "" {
		idp = DefaultIdentityProvider
	}
	aud := Strings(a.Audience...)
	if len(a.Audience) == 1 {
		aud = String(a.Audience[0])
	}

	set := NewSet()
	b := builder{set: set}
	b.add(Issuer, String(a.Issuer))
	b.add(Subject, String(g.Subject))
	b.add(Audience, aud)
	b.add(ClientID, String(g.ClientID))
	b.add(IdentityProvider, String(idp))
	b.add(Scope, Strings(g.Scopes...))
	b.add(AuthMethods, Strings(g.AuthMethods...))
	b.add(IssuedAt, Int(iat))
	b.add(Expiry, Int(exp))

	for _, e := range a.Extras {
		switch e {
		case ExtraNotBefore:
			b.add(NotBefore, Int(iat))
		case ExtraAuthTime:
			at := iat
			if !g.AuthTime.IsZero() {
				at = g.AuthTime.Unix()
			}
			b.add(AuthTime, Int(at))
		case ExtraTokenID:
			newID := uuid.NewString
			if a.NewID != nil {
				newID = a.NewID
			}
			b.add(TokenID, String(newID()))
		default:
			b.err = fmt.Errorf("claims: unknown extra claim %q", e)
		}
	}

	names := make([]string, 0, len(g.Extra))
	for n := range g.Extra {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b.add(n, g.Extra[n])
	}

	if b.err != nil {
		return nil, b.err
	}
	return set, nil
}

// builder acumula el primer error de inserción.
type builder struct {
	set *Set
	err error
}

func (b *builder) add(name string, v Value) {
	if b.err != nil {
		return
	}
	b.err = b.set.Add(name, v)
}
