package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
	"github.com/dmitrijs2005/sigrelay/internal/server/auth"
)

func (s *GRPCServer) session(ctx context.Context) (*models.Session, error) {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no session")
	}
	return session, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *rpc.Empty) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "pong"}, nil
}

// Authenticate expects the handshake assertion as the bearer credential.
func (s *GRPCServer) Authenticate(ctx context.Context, req *rpc.AuthenticateRequest) (*rpc.SessionInfo, error) {
	token, err := auth.ParseBearer(authorization(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	ttl, err := req.ParseTTL()
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	session, err := s.sessions.Authenticate(ctx, token, ttl)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return rpc.NewSessionInfo(session), nil
}

func (s *GRPCServer) GetSession(ctx context.Context, _ *rpc.Empty) (*rpc.SessionInfo, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return rpc.NewSessionInfo(session), nil
}

func (s *GRPCServer) PublishEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.events.Publish(ctx, session, e)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return stored, nil
}

func (s *GRPCServer) GetEvent(ctx context.Context, req *rpc.IDRequest) (*models.Event, error) {
	e, err := s.events.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return e, nil
}

func (s *GRPCServer) ListEvents(ctx context.Context, _ *rpc.Empty) (*rpc.EventList, error) {
	list, err := s.events.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.EventList{Events: list}, nil
}

func (s *GRPCServer) DeleteEvent(ctx context.Context, req *rpc.IDRequest) (*rpc.Empty, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.events.Delete(ctx, session, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, u *models.User) (*models.User, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.users.Register(ctx, session, models.NewUser(u.Name, u.PublicKey))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return stored, nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *rpc.KeyRequest) (*models.User, error) {
	u, err := s.users.Get(ctx, req.PublicKey)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return u, nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *rpc.Empty) (*rpc.UserList, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.UserList{Users: list}, nil
}
