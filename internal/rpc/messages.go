package rpc

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// AuthenticateRequest asks for a session. TTL is a Go duration string; empty
// selects the server default.
type AuthenticateRequest struct {
	TTL string `json:"ttl,omitempty"`
}

// ParseTTL returns the requested lifetime, 0 when unset.
func (r *AuthenticateRequest) ParseTTL() (time.Duration, error) {
	if r == nil || r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("%w: ttl: %v", common.ErrorBadRequest, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative ttl", common.ErrorValidation)
	}
	return d, nil
}

// SessionInfo is what a client learns about its session. The shared secret
// is not part of it: the client derives it from ServerPublicKey.
type SessionInfo struct {
	SessionID       string `json:"session_id"`
	PublicKey       string `json:"public_key"`
	ServerPublicKey string `json:"server_public_key"`
	ExpiresAt       int64  `json:"expires_at"`
}

func NewSessionInfo(s *models.Session) *SessionInfo {
	return &SessionInfo{
		SessionID:       s.ID,
		PublicKey:       s.PublicKey,
		ServerPublicKey: s.ServerPublicKey(),
		ExpiresAt:       s.ExpiresAt,
	}
}

type IDRequest struct {
	ID string `json:"id"`
}

type KeyRequest struct {
	PublicKey string `json:"public_key"`
}

type EventList struct {
	Events []*models.Event `json:"events"`
}

type UserList struct {
	Users []*models.User `json:"users"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}
