// Package grpc exposes the relay as the sigrelay.Relay gRPC service. Messages
// travel with the JSON codec from the rpc package.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/auth"
)

type eventSvc interface {
	Publish(ctx context.Context, session *models.Session, e *models.Event) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, session *models.Session, id string) error
}

type sessionSvc interface {
	Authenticate(ctx context.Context, token string, ttl time.Duration) (*models.Session, error)
	Resolve(ctx context.Context, id string) (*models.Session, error)
}

type userSvc interface {
	Register(ctx context.Context, session *models.Session, u *models.User) (*models.User, error)
	Get(ctx context.Context, publicKey string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type GRPCServer struct {
	address  string
	logger   logging.Logger
	events   eventSvc
	sessions sessionSvc
	users    userSvc
	gate     *auth.Gate
}

var _ rpc.RelayServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, es eventSvc, ss sessionSvc, us userSvc) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		events:   es,
		sessions: ss,
		users:    us,
		gate:     auth.NewGate(ss),
	}
}

// NewServer returns a grpc.Server with the relay service and the session
// interceptor registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.sessionInterceptor))
	srv := grpc.NewServer(opts...)
	rpc.RegisterRelayServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	return srv.Serve(listen)
}
