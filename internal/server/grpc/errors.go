package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

// codeFor maps a service error to a gRPC code.
func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrorBadRequest),
		errors.Is(err, common.ErrInvalidKey),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrorValidation):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrorSignatureMismatch):
		return codes.FailedPrecondition
	case errors.Is(err, common.ErrorUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrorForbidden):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound
	}
	return codes.Internal
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(code, common.ErrorInternal.Error())
	}
	return status.Error(code, err.Error())
}
