package rpc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

func TestAuthenticateRequest_ParseTTL(t *testing.T) {
	var nilReq *AuthenticateRequest
	d, err := nilReq.ParseTTL()
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = (&AuthenticateRequest{TTL: "15m"}).ParseTTL()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = (&AuthenticateRequest{TTL: "soon"}).ParseTTL()
	assert.ErrorIs(t, err, common.ErrorBadRequest)

	_, err = (&AuthenticateRequest{TTL: "-1s"}).ParseTTL()
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestNewSessionInfo_OmitsSecret(t *testing.T) {
	client, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	s, err := models.NewSession(client.PublicKey, 0, time.Now())
	require.NoError(t, err)

	info := NewSessionInfo(s)
	assert.Equal(t, s.ID, info.SessionID)
	assert.Equal(t, s.ServerPublicKey(), info.ServerPublicKey)

	b, err := json.Marshal(info)
	require.NoError(t, err)
	assert.NotContains(t, string(b), s.SharedSecret)
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&IDRequest{ID: "abc"})
	require.NoError(t, err)

	var out IDRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "abc", out.ID)
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/sigrelay.Relay/Ping", FullMethod(MethodPing))
	assert.Len(t, ServiceDesc.Methods, 10)
}
