package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokend/internal/security/password"
)

func TestClients_Lookup(t *testing.T) {
	cs, err := NewClients(
		Client{ID: "roclient", AllowedScopes: []string{"api1", "api2"}, GrantTypes: []string{"password"}},
		Client{ID: "client.custom", AllowedScopes: []string{"api1"}},
	)
	require.NoError(t, err)

	c, err := cs.Lookup(context.Background(), "roclient")
	require.NoError(t, err)
	assert.Equal(t, []string{"api1", "api2"}, c.AllowedScopes)
	assert.True(t, c.AllowsGrant("PASSWORD"))
	assert.False(t, c.AllowsGrant("custom"))

	// mutar la copia no afecta la tabla
	c.AllowedScopes[0] = "hacked"
	again, _ := cs.Lookup(context.Background(), "roclient")
	assert.Equal(t, "api1", again.AllowedScopes[0])

	open, _ := cs.Lookup(context.Background(), "client.custom")
	assert.True(t, open.AllowsGrant("anything"))

	_, err = cs.Lookup(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewClients_Invalid(t *testing.T) {
	_, err := NewClients(Client{ID: " "})
	require.Error(t, err)
	_, err = NewClients(Client{ID: "a"}, Client{ID: "a"})
	require.Error(t, err)
}

func TestUsers_CheckCredentials(t *testing.T) {
	phc, err := password.Hash(password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}, "alice-secret")
	require.NoError(t, err)

	us, err := NewUsers(
		User{Username: "bob", Password: "bob"},
		User{Username: "alice", Subject: "818727", PasswordHash: phc},
	)
	require.NoError(t, err)
	ctx := context.Background()

	sub, ok, err := us.CheckCredentials(ctx, "bob", "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", sub)

	_, ok, err = us.CheckCredentials(ctx, "bob", "wrongpass")
	require.NoError(t, err)
	assert.False(t, ok)

	sub, ok, err = us.CheckCredentials(ctx, "alice", "alice-secret")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "818727", sub)

	_, ok, err = us.CheckCredentials(ctx, "nobody", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsers_CancelledContext(t *testing.T) {
	us, err := NewUsers(User{Username: "bob", Password: "bob"})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = us.CheckCredentials(ctx, "bob", "bob")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewUsers_Invalid(t *testing.T) {
	_, err := NewUsers(User{Username: "bob"})
	require.Error(t, err)
	_, err = NewUsers(User{Username: "bob", PasswordHash: "plain"})
	require.ErrorIs(t, err, password.ErrMalformedHash)
}
