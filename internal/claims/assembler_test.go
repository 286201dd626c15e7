package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1700000000, 0)

func testAssembler(extras ...Extra) *Assembler {
	a := NewAssembler("https://idsvr4/", []string{"api"}, time.Hour, extras...)
	a.Now = func() time.Time { return fixedNow }
	a.NewID = func() string { return "jti-1" }
	return a
}

func bobGrant() Grant {
	return Grant{
		Subject:     "bob",
		ClientID:    "roclient",
		Scopes:      []string{"api1", "api2"},
		AuthMethods: []string{"password"},
	}
}

func TestAssemble_RequiredClaimsInOrder(t *testing.T) {
	set, err := testAssembler().Assemble(bobGrant())
	require.NoError(t, err)

	assert.Equal(t, Required, set.Names())

	iss, _ := set.Get(Issuer)
	assert.Equal(t, "https://idsvr4", iss.Str())
	aud, _ := set.Get(Audience)
	assert.Equal(t, KindString, aud.Kind())
	assert.Equal(t, "api", aud.Str())
	idp, _ := set.Get(IdentityProvider)
	assert.Equal(t, "local", idp.Str())
	scope, _ := set.Get(Scope)
	assert.Equal(t, []string{"api1", "api2"}, scope.List())
	amr, _ := set.Get(AuthMethods)
	assert.Equal(t, []string{"password"}, amr.List())

	iat, _ := set.Get(IssuedAt)
	exp, _ := set.Get(Expiry)
	assert.Equal(t, fixedNow.Unix(), iat.Int64())
	assert.Equal(t, fixedNow.Unix()+3600, exp.Int64())
}

func TestAssemble_Deterministic(t *testing.T) {
	a := testAssembler(ExtraNotBefore, ExtraAuthTime, ExtraTokenID)
	s1, err := a.Assemble(bobGrant())
	require.NoError(t, err)
	s2, err := a.Assemble(bobGrant())
	require.NoError(t, err)
	assert.True(t, s1.Equal(s2))
}

func TestAssemble_MultipleAudiencesIsList(t *testing.T) {
	a := testAssembler()
	a.Audience = []string{"api", "api2"}
	set, err := a.Assemble(bobGrant())
	require.NoError(t, err)
	aud, _ := set.Get(Audience)
	assert.Equal(t, []string{"api", "api2"}, aud.List())
}

func TestAssemble_StandardExtras(t *testing.T) {
	g := bobGrant()
	g.AuthTime = fixedNow.Add(-time.Minute)
	set, err := testAssembler(ExtraNotBefore, ExtraAuthTime, ExtraTokenID).Assemble(g)
	require.NoError(t, err)

	require.Equal(t, 12, set.Len())
	nbf, _ := set.Get(NotBefore)
	assert.Equal(t, fixedNow.Unix(), nbf.Int64())
	at, _ := set.Get(AuthTime)
	assert.Equal(t, g.AuthTime.Unix(), at.Int64())
	jti, _ := set.Get(TokenID)
	assert.Equal(t, "jti-1", jti.Str())
}

func TestAssemble_GrantExtrasSortedAfterRegistered(t *testing.T) {
	g := bobGrant()
	g.Extra = map[string]Value{"zeta": Int(1), "alpha": String("a")}
	set, err := testAssembler().Assemble(g)
	require.NoError(t, err)
	names := set.Names()
	assert.Equal(t, []string{"alpha", "zeta"}, names[len(names)-2:])
}

func TestAssemble_ExtraCollidingWithRegisteredClaim(t *testing.T) {
	g := bobGrant()
	g.Extra = map[string]Value{"sub": String("mallory")}
	_, err := testAssembler().Assemble(g)
	require.ErrorIs(t, err, ErrDuplicateClaim)
}

func TestAssemble_MissingSubject(t *testing.T) {
	g := bobGrant()
	g.Subject = "  "
	_, err := testAssembler().Assemble(g)
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestAssemble_MissingAudience(t *testing.T) {
	a := testAssembler()
	a.Audience = nil
	_, err := a.Assemble(bobGrant())
	require.ErrorIs(t, err, ErrIncomplete)
}

func TestParseExtra(t *testing.T) {
	e, err := ParseExtra(" jti ")
	require.NoError(t, err)
	assert.Equal(t, ExtraTokenID, e)

	_, err = ParseExtra("sid")
	require.Error(t, err)
}
