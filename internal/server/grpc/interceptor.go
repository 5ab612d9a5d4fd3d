package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
	"github.com/dmitrijs2005/sigrelay/internal/server/auth"
)

// open methods skip the session check. Authenticate validates its own
// credential.
var open = map[string]struct{}{
	rpc.FullMethod(rpc.MethodPing):         {},
	rpc.FullMethod(rpc.MethodAuthenticate): {},
}

func authorization(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *GRPCServer) sessionInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := open[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	session, err := s.gate.Authenticate(ctx, authorization(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return handler(auth.WithSession(ctx, session), req)
}
