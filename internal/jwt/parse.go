package jwt

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tokend/internal/claims"
)

// VerifyOptions ajusta la validación de Verify.
type VerifyOptions struct {
	Algorithms []string // default: el alg del header debe estar en esta lista (requerido)
	Issuer     string   // si no es vacío, "iss" debe coincidir
	Leeway     time.Duration
	Now        func() time.Time
}

// Verify valida firma, exp e iss (opcional) y devuelve el payload como Set.
// key es la clave de verificación (ver MethodSigner.VerificationKey).
func Verify(token string, key any, opts VerifyOptions) (*claims.Set, error) {
	if len(opts.Algorithms) == 0 {
		return nil, fmt.Errorf("jwt: no algorithms allowed")
	}
	popts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods(opts.Algorithms),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuedAt(),
	}
	if opts.Issuer != "" {
		popts = append(popts, jwtv5.WithIssuer(opts.Issuer))
	}
	if opts.Leeway > 0 {
		popts = append(popts, jwtv5.WithLeeway(opts.Leeway))
	}
	if opts.Now != nil {
		popts = append(popts, jwtv5.WithTimeFunc(opts.Now))
	}

	keyfunc := func(*jwtv5.Token) (any, error) { return key, nil }
	tok, err := jwtv5.NewParser(popts...).Parse(token, keyfunc)
	if err != nil {
		return nil, fmt.Errorf("jwt: invalid token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("jwt: invalid token")
	}
	return DecodePayload(token)
}
