package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrDuplicateField = errors.New("response: duplicate field")

// Fields es un objeto JSON ordenado con nombres únicos.
type Fields struct {
	names []string
	vals  map[string]Value
}

func NewFields() *Fields { return &Fields{vals: map[string]Value{}} }

// Set agrega un campo al final. Un nombre repetido es ErrDuplicateField: los
// campos nunca se pisan.
func (f *Fields) Set(name string, v Value) error {
	if !v.Valid() {
		return fmt.Errorf("response: invalid value for %q", name)
	}
	if _, ok := f.vals[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	f.names = append(f.names, name)
	f.vals[name] = v
	return nil
}

func (f *Fields) Get(name string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	v, ok := f.vals[name]
	return v, ok
}

func (f *Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

func (f *Fields) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Clone hace una copia profunda. Clone de nil devuelve un Fields vacío.
func (f *Fields) Clone() *Fields {
	out := NewFields()
	if f == nil {
		return out
	}
	for _, n := range f.names {
		v := f.vals[n]
		if v.kind == KindObject {
			v.obj = v.obj.Clone()
		}
		out.names = append(out.names, n)
		out.vals[n] = v
	}
	return out
}

// Equal compara nombres y valores sin importar el orden.
func (f *Fields) Equal(o *Fields) bool {
	if f.Len() != o.Len() {
		return false
	}
	for _, n := range f.Names() {
		ov, ok := o.Get(n)
		if !ok || !f.vals[n].Equal(ov) {
			return false
		}
	}
	return true
}

func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range f.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := f.vals[n].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", n, err)
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
