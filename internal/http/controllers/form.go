package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/tokend/internal/grant"
)

// MaxFormBytes es el límite del body del token endpoint.
const MaxFormBytes = 64 << 10

var (
	errNotForm       = errors.New("content type must be application/x-www-form-urlencoded")
	errBodyTooLarge  = errors.New("request body too large")
	errDuplicatedKey = errors.New("duplicate parameter")
)

// parseForm decodifica un body urlencoded conservando el orden de los
// parámetros. url.ParseQuery devuelve un map y pierde el orden.
func parseForm(w http.ResponseWriter, r *http.Request) ([]grant.Param, error) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/x-www-form-urlencoded" {
		return nil, errNotForm
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFormBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errBodyTooLarge
		}
		return nil, err
	}

	var params []grant.Param
	seen := map[string]bool{}
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter name: %w", err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", name, err)
		}
		// RFC 6749 §3.2: los parámetros no pueden repetirse
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", errDuplicatedKey, name)
		}
		seen[name] = true
		params = append(params, grant.Param{Name: name, Value: value})
	}
	return params, nil
}

func lookup(params []grant.Param, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// clientID sale de HTTP Basic o del form. Si vienen ambos deben coincidir.
// El secret no se valida.
func clientID(r *http.Request, params []grant.Param) (string, error) {
	form := strings.TrimSpace(lookup(params, "client_id"))
	user, _, ok := r.BasicAuth()
	if !ok {
		if r.Header.Get("Authorization") != "" {
			return "", errors.New("malformed authorization header")
		}
		return form, nil
	}
	// RFC 6749 §2.3.1: el client id va urlencoded dentro de Basic
	basic, err := url.QueryUnescape(user)
	if err != nil {
		return "", fmt.Errorf("malformed basic client id: %w", err)
	}
	if form != "" && form != basic {
		return "", errors.New("client_id mismatch between basic auth and form")
	}
	return basic, nil
}
