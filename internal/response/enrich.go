package response

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFieldCollision: un campo de extensión usa un nombre estándar o ya presente.
// Es un defecto de configuración del deployment.
var ErrFieldCollision = errors.New("response: extension field collides with response field")

// ExtensionProvider devuelve los campos extra del deployment. Se invoca en cada
// respuesta (success o error) y debe devolver siempre lo mismo.
type ExtensionProvider interface {
	Extensions() *Fields
}

// Static es un ExtensionProvider fijo, armado una vez al arranque.
type Static struct {
	fields *Fields
}

// NewStatic valida que ningún campo use un nombre reservado.
func NewStatic(f *Fields) (*Static, error) {
	for _, n := range f.Names() {
		if IsReserved(n) {
			return nil, fmt.Errorf("%w: %q is a standard field", ErrFieldCollision, n)
		}
	}
	return &Static{fields: f.Clone()}, nil
}

// Extensions devuelve una copia; los callers no pueden mutar el provider.
func (s *Static) Extensions() *Fields { return s.fields.Clone() }

// None es el provider vacío.
var None ExtensionProvider = noExtensions{}

type noExtensions struct{}

func (noExtensions) Extensions() *Fields { return NewFields() }

// Enrich devuelve una respuesta nueva con base + extensiones. base no se modifica.
// Nunca renombra ni pisa campos: una colisión es ErrFieldCollision.
func Enrich(base *Response, p ExtensionProvider) (*Response, error) {
	out := &Response{fields: base.fields.Clone(), isErr: base.isErr}
	if p == nil {
		return out, nil
	}
	ext := p.Extensions()
	for _, n := range ext.Names() {
		if IsReserved(n) || out.fields.Has(n) {
			return nil, fmt.Errorf("%w: %q", ErrFieldCollision, n)
		}
		v, _ := ext.Get(n)
		if err := out.fields.Set(n, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FromYAML convierte un mapping YAML en Fields conservando el orden del archivo.
// Solo se admiten escalares y mappings anidados; secuencias no.
func FromYAML(node *yaml.Node) (*Fields, error) {
	if node == nil || node.Kind == 0 {
		return NewFields(), nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return NewFields(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("response: extensions must be a mapping (line %d)", node.Line)
	}
	f := NewFields()
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, vn := node.Content[i], node.Content[i+1]
		name := strings.TrimSpace(k.Value)
		if name == "" {
			return nil, fmt.Errorf("response: empty extension field name (line %d)", k.Line)
		}
		v, err := yamlValue(vn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := f.Set(name, v); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func yamlValue(n *yaml.Node) (Value, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		f, err := FromYAML(n)
		if err != nil {
			return Value{}, err
		}
		return Object(f), nil
	case yaml.ScalarNode:
		var x any
		if err := n.Decode(&x); err != nil {
			return Value{}, err
		}
		return FromAny(x)
	default:
		return Value{}, fmt.Errorf("response: unsupported yaml node at line %d", n.Line)
	}
}
