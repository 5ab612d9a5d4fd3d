package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

func TestNewSession_DefaultTTL(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	ts := time.Unix(1_700_000_000, 0)

	s, err := NewSession(client.PublicKey, 0, ts)
	require.NoError(t, err)

	assert.Equal(t, ts.Add(time.Hour).Unix(), s.ExpiresAt)
	assert.Equal(t, client.PublicKey, s.PublicKey)
	assert.NotEmpty(t, s.ID)
	assert.NotEmpty(t, s.ServerPublicKey())
	assert.False(t, s.Expired(ts))
	assert.True(t, s.Expired(ts.Add(time.Hour)))
}

func TestNewSession_RequestedTTL(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	ts := time.Unix(1_700_000_000, 0)

	s, err := NewSession(client.PublicKey, 10*time.Minute, ts)
	require.NoError(t, err)
	assert.Equal(t, ts.Add(10*time.Minute).Unix(), s.ExpiresAt)
}

func TestNewSession_SharedSecretMatchesClient(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	s, err := NewSession(client.PublicKey, 0, time.Now())
	require.NoError(t, err)

	fromClient, err := cryptox.DeriveSharedSecret(client.PrivateKey, s.ServerPublicKey())
	require.NoError(t, err)
	assert.Equal(t, s.SharedSecret, fromClient)
}

func TestNewSession_UniqueIDsAndKeys(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	seen := make(map[string]struct{})
	keys := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		s, err := NewSession(client.PublicKey, 0, time.Now())
		require.NoError(t, err)
		seen[s.ID] = struct{}{}
		keys[s.ServerPublicKey()] = struct{}{}
	}
	assert.Len(t, seen, 50)
	assert.Len(t, keys, 50)
}

func TestNewSession_Errors(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	_, err = NewSession(client.PublicKey, -time.Second, time.Now())
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = NewSession("not-a-key", 0, time.Now())
	assert.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestSession_ZeroExpiryNeverExpires(t *testing.T) {
	s := &Session{ID: "x"}
	assert.False(t, s.Expired(time.Unix(1<<40, 0)))
}

func TestSession_JSONOmitsSecrets(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	s, err := NewSession(client.PublicKey, 0, time.Now())
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	assert.NotContains(t, string(b), s.SharedSecret)
	assert.NotContains(t, string(b), s.KeyPair.PrivateKey)
}
