// Package auth guards protected operations with a bearer session id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

// SessionResolver looks up a live session by id. Unknown and expired ids
// both yield common.ErrorNotFound.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*models.Session, error)
}

// Gate admits requests whose bearer credential names a live session.
type Gate struct {
	sessions SessionResolver
}

func NewGate(sessions SessionResolver) *Gate {
	return &Gate{sessions: sessions}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively. A missing header,
// another scheme or an empty token is common.ErrorBadRequest.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", common.ErrorBadRequest)
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", fmt.Errorf("%w: authorization scheme must be %s", common.ErrorBadRequest, common.BearerScheme)
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", fmt.Errorf("%w: malformed bearer token", common.ErrorBadRequest)
	}
	return token, nil
}

// Authenticate resolves the session named by header. Absent and expired
// sessions are indistinguishable and both yield common.ErrorUnauthenticated.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.Session, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}

	s, err := g.sessions.Resolve(ctx, token)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: no live session", common.ErrorUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
