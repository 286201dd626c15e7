package claims

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_AddRejectsDuplicates(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("sub", String("bob")))
	err := s.Add("sub", String("alice"))
	require.ErrorIs(t, err, ErrDuplicateClaim)

	// case-sensitive: "Sub" es otro claim
	require.NoError(t, s.Add("Sub", String("alice")))
	assert.Equal(t, []string{"sub", "Sub"}, s.Names())
}

func TestSet_AddRejectsZeroValue(t *testing.T) {
	err := NewSet().Add("x", Value{})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestSet_MarshalKeepsInsertionOrder(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add("iss", String("https://idsvr4")))
	require.NoError(t, s.Add("scope", Strings("api1", "api2")))
	require.NoError(t, s.Add("iat", Int(1700000000)))
	require.NoError(t, s.Add("amr", Strings()))

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"iss":"https://idsvr4","scope":["api1","api2"],"iat":1700000000,"amr":[]}`, string(b))
}

func TestParse_RoundTrip(t *testing.T) {
	sets := []*Set{
		NewSet(),
		mustSet(t, "sub", String("bob")),
		mustSet(t,
			"iss", String("https://idsvr4"),
			"aud", Strings("api", "api2"),
			"exp", Int(1700003600),
			"scope", Strings(),
			"weird \"name\"", String("ünïcode ✓"),
			"neg", Int(-5),
		),
	}
	for _, in := range sets {
		b, err := in.MarshalJSON()
		require.NoError(t, err)
		out, err := Parse(b)
		require.NoError(t, err)
		assert.True(t, in.Equal(out), "round trip mismatch for %s", b)
		assert.Equal(t, in.Names(), out.Names())
	}
}

func TestParse_RejectsUnsupportedShapes(t *testing.T) {
	cases := map[string]string{
		"float":       `{"a":1.5}`,
		"bool":        `{"a":true}`,
		"null":        `{"a":null}`,
		"object":      `{"a":{"b":"c"}}`,
		"mixed list":  `{"a":["x",1]}`,
		"nested list": `{"a":[["x"]]}`,
		"not object":  `["a"]`,
		"trailing":    `{"a":"b"}{}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in))
			require.Error(t, err)
		})
	}
}

func TestParse_DuplicateKeyIsError(t *testing.T) {
	_, err := Parse([]byte(`{"sub":"a","sub":"b"}`))
	require.ErrorIs(t, err, ErrDuplicateClaim)
}

func TestSet_EqualIgnoresOrder(t *testing.T) {
	a := mustSet(t, "a", String("1"), "b", Int(2))
	b := mustSet(t, "b", Int(2), "a", String("1"))
	c := mustSet(t, "b", Int(2), "a", Strings("1"))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func mustSet(t *testing.T, kv ...any) *Set {
	t.Helper()
	s := NewSet()
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, s.Add(kv[i].(string), kv[i+1].(Value)))
	}
	return s
}

func TestFromAny(t *testing.T) {
	v, err := FromAny([]any{"a", "b"})
	require.NoError(t, err)
	assert.True(t, v.Equal(Strings("a", "b")))

	v, err = FromAny(7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int64())

	for _, bad := range []any{1.5, true, nil, []any{1}, map[string]any{}} {
		_, err := FromAny(bad)
		assert.Error(t, err, "%#v", bad)
	}
}
