// Package claims modela el conjunto de claims de un access token y su armado
// a partir de un grant validado.
package claims

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Kind identifica la forma de un valor de claim.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindStrings:
		return "string-list"
	default:
		return "invalid"
	}
}

// Value es un valor de claim: string, entero o lista de strings.
// El zero value es inválido.
type Value struct {
	kind Kind
	s    string
	n    int64
	list []string
}

// String construye un claim string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int construye un claim entero (p.ej. iat/exp en epoch seconds).
func Int(n int64) Value { return Value{kind: KindInt, n: n} }

// Strings construye un claim lista. Copia el slice.
func Strings(list ...string) Value {
	cp := make([]string, len(list))
	copy(cp, list)
	return Value{kind: KindStrings, list: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Valid() bool { return v.kind != 0 }

func (v Value) Str() string { return v.s }

func (v Value) Int64() int64 { return v.n }

// List devuelve una copia de la lista.
func (v Value) List() []string { return slices.Clone(v.list) }

// Equal compara forma y contenido.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.n == o.n
	case KindStrings:
		return slices.Equal(v.list, o.list)
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.n)
	case KindStrings:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return nil, fmt.Errorf("claims: invalid value")
	}
}

func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("String(%q)", v.s)
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.n)
	case KindStrings:
		return fmt.Sprintf("Strings(%q)", v.list)
	}
	return "Value(invalid)"
}

// FromAny convierte un valor decodificado de YAML/JSON. Solo se aceptan las
// formas de claim: string, entero y lista de strings.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > 1<<63-1 {
			return Value{}, fmt.Errorf("claims: integer %d overflows", t)
		}
		return Int(int64(t)), nil
	case float64:
		if t != float64(int64(t)) {
			return Value{}, fmt.Errorf("claims: non-integer number %v", t)
		}
		return Int(int64(t)), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return Value{}, fmt.Errorf("claims: non-integer number %s", t)
		}
		return Int(n), nil
	case []string:
		return Strings(t...), nil
	case []any:
		list := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: list element %T", ErrUnsupported, e)
			}
			list = append(list, s)
		}
		return Strings(list...), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupported, x)
	}
}
