package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client *rpc.RelayClient

	mu    sync.RWMutex
	token string
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient connects to target (host:port) without TLS. Extra dial
// options are appended, which lets tests inject an in-memory dialer.
func NewGRPCClient(target string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.authorizationInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewRelayClient(conn)
	return c, nil
}

func (c *GRPCClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *GRPCClient) authorizationInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// fromStatus maps a gRPC status back to a sentinel error.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		sentinel = common.ErrorBadRequest
	case codes.FailedPrecondition:
		sentinel = common.ErrorSignatureMismatch
	case codes.Unauthenticated:
		sentinel = common.ErrorUnauthenticated
	case codes.PermissionDenied:
		sentinel = common.ErrorForbidden
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	_, err := c.client.Ping(ctx)
	return fromStatus(err)
}

func (c *GRPCClient) Authenticate(ctx context.Context, ttl time.Duration) (*rpc.SessionInfo, error) {
	info, err := c.client.Authenticate(ctx, &rpc.AuthenticateRequest{TTL: ttlString(ttl)})
	return info, fromStatus(err)
}

func (c *GRPCClient) GetSession(ctx context.Context) (*rpc.SessionInfo, error) {
	info, err := c.client.GetSession(ctx)
	return info, fromStatus(err)
}

func (c *GRPCClient) PublishEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	out, err := c.client.PublishEvent(ctx, e)
	return out, fromStatus(err)
}

func (c *GRPCClient) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	out, err := c.client.GetEvent(ctx, &rpc.IDRequest{ID: id})
	return out, fromStatus(err)
}

func (c *GRPCClient) ListEvents(ctx context.Context) ([]*models.Event, error) {
	out, err := c.client.ListEvents(ctx)
	if err != nil {
		return nil, fromStatus(err)
	}
	return out.Events, nil
}

func (c *GRPCClient) DeleteEvent(ctx context.Context, id string) error {
	_, err := c.client.DeleteEvent(ctx, &rpc.IDRequest{ID: id})
	return fromStatus(err)
}

func (c *GRPCClient) RegisterUser(ctx context.Context, u *models.User) (*models.User, error) {
	out, err := c.client.RegisterUser(ctx, u)
	return out, fromStatus(err)
}

func (c *GRPCClient) GetUser(ctx context.Context, publicKey string) (*models.User, error) {
	out, err := c.client.GetUser(ctx, &rpc.KeyRequest{PublicKey: publicKey})
	return out, fromStatus(err)
}

func (c *GRPCClient) ListUsers(ctx context.Context) ([]*models.User, error) {
	out, err := c.client.ListUsers(ctx)
	if err != nil {
		return nil, fromStatus(err)
	}
	return out.Users, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
