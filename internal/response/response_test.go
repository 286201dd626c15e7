package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const dtoYAML = `
dto:
  string_value: some_string
  int_value: 42
  nested:
    string_value: nested_string
    int_value: 43
`

func dtoProvider(t *testing.T) *Static {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(dtoYAML), &node))
	f, err := FromYAML(&node)
	require.NoError(t, err)
	p, err := NewStatic(f)
	require.NoError(t, err)
	return p
}

func TestSuccessAndErrorShape(t *testing.T) {
	ok, err := json.Marshal(Success("abc.def.ghi", 3600))
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"abc.def.ghi","token_type":"Bearer","expires_in":3600}`, string(ok))
	assert.Equal(t, `{"access_token":"abc.def.ghi","token_type":"Bearer","expires_in":3600}`, string(ok))

	e := Error("invalid_grant", "invalid_credential")
	assert.True(t, e.IsError())
	assert.Equal(t, "invalid_grant", e.ErrorCode())
	assert.False(t, e.Has(FieldAccessToken))
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"error":"invalid_grant","error_description":"invalid_credential"}`, string(b))
}

func TestEnrich_SameExtensionsOnBothPaths(t *testing.T) {
	p := dtoProvider(t)
	want := `{"string_value":"some_string","int_value":42,"nested":{"string_value":"nested_string","int_value":43}}`

	for _, base := range []*Response{Success("tok", 3600), Error("invalid_grant", "invalid_credential")} {
		out, err := Enrich(base, p)
		require.NoError(t, err)
		assert.Equal(t, base.Len()+1, out.Len())
		for _, n := range base.Fields().Names() {
			bv, _ := base.Get(n)
			ov, ok := out.Get(n)
			require.True(t, ok, n)
			assert.True(t, bv.Equal(ov), n)
		}

		dto, ok := out.Get("dto")
		require.True(t, ok)
		b, err := json.Marshal(dto)
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}

func TestEnrich_DoesNotMutateBase(t *testing.T) {
	base := Success("tok", 60)
	_, err := Enrich(base, dtoProvider(t))
	require.NoError(t, err)
	assert.Equal(t, 3, base.Len())
	assert.False(t, base.Has("dto"))
}

func TestEnrich_Collision(t *testing.T) {
	_, err := NewStatic(fieldsOf(t, "expires_in", Int(1)))
	require.ErrorIs(t, err, ErrFieldCollision)

	// un provider que no pasó por NewStatic igual es rechazado en Enrich
	raw := rawProvider{fieldsOf(t, "scope", String("x"))}
	_, err = Enrich(Error("invalid_request", "x"), raw)
	require.ErrorIs(t, err, ErrFieldCollision)
}

func TestEnrich_NilAndNone(t *testing.T) {
	out, err := Enrich(Success("tok", 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())

	out, err = Enrich(Success("tok", 1), None)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}

func TestStatic_ReturnsCopies(t *testing.T) {
	p := dtoProvider(t)
	a := p.Extensions()
	require.NoError(t, a.Set("other", Bool(true)))
	assert.Equal(t, 1, p.Extensions().Len())
}

func TestFromYAML_Rejects(t *testing.T) {
	for _, src := range []string{"- a\n- b\n", "dto:\n  list: [1, 2]\n", "a: 1\na: 2\n"} {
		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte(src), &node))
		_, err := FromYAML(&node)
		assert.Error(t, err, src)
	}

	f, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{"b": 1.5, "a": 2.0, "c": nil})
	require.NoError(t, err)
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1.5,"c":null}`, string(b))

	_, err = FromAny([]int{1})
	assert.Error(t, err)
}

type rawProvider struct{ f *Fields }

func (r rawProvider) Extensions() *Fields { return r.f.Clone() }

func fieldsOf(t *testing.T, name string, v Value) *Fields {
	t.Helper()
	f := NewFields()
	require.NoError(t, f.Set(name, v))
	return f
}
