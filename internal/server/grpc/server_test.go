package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/sigrelay/internal/assertion"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
	"github.com/dmitrijs2005/sigrelay/internal/server/config"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sigrelay/internal/server/services"
)

func newTestClient(t *testing.T) *rpc.RelayClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	m := repomanager.NewInMemoryRepositoryManager()
	l := logging.Nop{}
	s := NewGRPCServer("", l,
		services.NewEventService(m, l),
		services.NewSessionService(m, cfg, l),
		services.NewUserService(m, l))

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return rpc.NewRelayClient(conn)
}

func bearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func newKey(t *testing.T) cryptox.KeyPair {
	t.Helper()
	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func login(t *testing.T, c *rpc.RelayClient, kp cryptox.KeyPair) (context.Context, *rpc.SessionInfo) {
	t.Helper()
	tok, err := assertion.New(kp.PrivateKey, 0, time.Now())
	require.NoError(t, err)

	info, err := c.Authenticate(bearer(context.Background(), tok), &rpc.AuthenticateRequest{})
	require.NoError(t, err)
	return bearer(context.Background(), info.SessionID), info
}

func TestPing(t *testing.T) {
	c := newTestClient(t)
	resp, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Status)
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t)
	kp := newKey(t)

	ctx, info := login(t, c, kp)
	assert.Equal(t, kp.PublicKey, info.PublicKey)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), info.ExpiresAt, 2)

	got, err := c.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.SessionID, got.SessionID)

	_, err = c.Authenticate(context.Background(), &rpc.AuthenticateRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "missing credential")

	_, err = c.Authenticate(bearer(context.Background(), "junk"), &rpc.AuthenticateRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_RejectsWithoutSession(t *testing.T) {
	c := newTestClient(t)

	_, err := c.ListEvents(context.Background())
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.ListEvents(bearer(context.Background(), uuid.NewString()))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.GetUser(bearer(context.Background(), uuid.NewString()), &rpc.KeyRequest{PublicKey: "x"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestEvents(t *testing.T) {
	c := newTestClient(t)
	author := newKey(t)
	other := newKey(t)
	ctx, _ := login(t, c, author)
	otherCtx, _ := login(t, c, other)

	e := models.NewEvent(author.PublicKey, "hello", 0)
	require.NoError(t, e.Sign(author.PrivateKey))

	stored, err := c.PublishEvent(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, stored.ID)

	list, err := c.ListEvents(otherCtx)
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, "hello", list.Events[0].Content)

	got, err := c.GetEvent(otherCtx, &rpc.IDRequest{ID: e.ID})
	require.NoError(t, err)
	assert.True(t, got.Verify())

	tampered := *e
	tampered.Content = "bye"
	_, err = c.PublishEvent(ctx, &tampered)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = c.DeleteEvent(otherCtx, &rpc.IDRequest{ID: e.ID})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = c.DeleteEvent(ctx, &rpc.IDRequest{ID: e.ID})
	require.NoError(t, err)

	_, err = c.GetEvent(ctx, &rpc.IDRequest{ID: e.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUsers(t *testing.T) {
	c := newTestClient(t)
	kp := newKey(t)
	ctx, _ := login(t, c, kp)

	u, err := c.RegisterUser(ctx, &models.User{Name: "alice", PublicKey: kp.PublicKey})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)

	_, err = c.RegisterUser(ctx, &models.User{Name: "bob", PublicKey: newKey(t).PublicKey})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	got, err := c.GetUser(ctx, &rpc.KeyRequest{PublicKey: kp.PublicKey})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	list, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Users, 1)
}
