// Package response modela la respuesta JSON del token endpoint como un mapa
// ordenado de campos, y el enriquecimiento con campos de extensión del deployment.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota + 1
	KindString
	KindInt
	KindFloat
	KindBool
	KindObject
)

// Value es un valor JSON: escalar u objeto anidado (Fields). El zero value es inválido.
type Value struct {
	kind Kind
	s    string
	n    int64
	f    float64
	b    bool
	obj  *Fields
}

func Null() Value            { return Value{kind: KindNull} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(n int64) Value      { return Value{kind: KindInt, n: n} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Object(f *Fields) Value { return Value{kind: KindObject, obj: f.Clone()} }

// Float rechaza NaN/Inf porque no son representables en JSON.
func Float(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("response: non-finite float %v", f)
	}
	return Value{kind: KindFloat, f: f}, nil
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Valid() bool    { return v.kind != 0 }
func (v Value) Str() string    { return v.s }
func (v Value) Int64() int64   { return v.n }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool     { return v.b }

// Fields devuelve una copia del objeto anidado (nil si no es objeto).
func (v Value) Fields() *Fields {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.Clone()
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.n == o.n
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindObject:
		return v.obj.Equal(o.obj)
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.n, 10)), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	case KindObject:
		return v.obj.MarshalJSON()
	default:
		return nil, errors.New("response: invalid value")
	}
}

// FromAny convierte un valor Go (típicamente decodificado de YAML/JSON) a Value.
// Los mapas se ordenan por clave porque Go no conserva el orden; para conservar
// el orden del archivo usar FromYAML.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint32:
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return Int(int64(t)), nil
		}
		return Float(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		f := NewFields()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			if err := f.Set(k, v); err != nil {
				return Value{}, err
			}
		}
		return Object(f), nil
	default:
		return Value{}, fmt.Errorf("response: unsupported extension value type %T", x)
	}
}
