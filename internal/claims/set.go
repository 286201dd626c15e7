package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Nombres de claims registrados en el access token.
const (
	Issuer           = "iss"
	Subject          = "sub"
	Audience         = "aud"
	ClientID         = "client_id"
	IdentityProvider = "idp"
	Scope            = "scope"
	AuthMethods      = "amr"
	IssuedAt         = "iat"
	Expiry           = "exp"

	NotBefore = "nbf"
	AuthTime  = "auth_time"
	TokenID   = "jti"
)

// Required lista los claims que todo access token emitido debe llevar, en el
// orden en que el Assembler los inserta.
var Required = []string{Issuer, Subject, Audience, ClientID, IdentityProvider, Scope, AuthMethods, IssuedAt, Expiry}

var (
	ErrDuplicateClaim = errors.New("claims: duplicate claim")
	ErrInvalidValue   = errors.New("claims: invalid value")
	ErrUnsupported    = errors.New("claims: unsupported json shape")
)

// Set es un mapa ordenado nombre -> valor. Los nombres son case-sensitive y
// únicos; insertar dos veces el mismo nombre es un error.
type Set struct {
	names []string
	vals  map[string]Value
}

// NewSet crea un Set vacío.
func NewSet() *Set {
	return &Set{vals: map[string]Value{}}
}

// Add inserta un claim al final. Falla con ErrDuplicateClaim si ya existe.
func (s *Set) Add(name string, v Value) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidValue, name)
	}
	if _, ok := s.vals[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateClaim, name)
	}
	s.names = append(s.names, name)
	s.vals[name] = v
	return nil
}

func (s *Set) Get(name string) (Value, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Has indica si el claim está presente.
func (s *Set) Has(name string) bool {
	_, ok := s.vals[name]
	return ok
}

// Names devuelve los nombres en orden de inserción.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Set) Len() int { return len(s.names) }

// Equal compara claim por claim, sin importar el orden.
func (s *Set) Equal(o *Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, n := range s.names {
		ov, ok := o.vals[n]
		if !ok || !s.vals[n].Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON serializa en el orden de inserción.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := s.vals[n].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", n, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodifica un objeto JSON a un Set conservando el orden del wire.
// Enteros -> Int, strings -> String, arrays de strings -> Strings.
// Cualquier otra forma (floats, bools, objetos, null) es ErrUnsupported.
func Parse(data []byte) (*Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: payload is not an object", ErrUnsupported)
	}

	set := NewSet()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		v, err := parseValue(dec)
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", name, err)
		}
		if err := set.Add(name, v); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrUnsupported)
	}
	return set, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case string:
		return String(t), nil
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: non-integer number %s", ErrUnsupported, t)
		}
		return Int(n), nil
	case json.Delim:
		if t != '[' {
			return Value{}, fmt.Errorf("%w: object", ErrUnsupported)
		}
		list := []string{}
		for dec.More() {
			el, err := dec.Token()
			if err != nil {
				return Value{}, err
			}
			s, ok := el.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: non-string list element", ErrUnsupported)
			}
			list = append(list, s)
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return Strings(list...), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupported, tok)
	}
}
