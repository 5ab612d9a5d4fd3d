package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
)

type HTTPClient struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at base, e.g.
// "http://127.0.0.1:3000". A nil hc selects a client with a 10s timeout.
func NewHTTPClient(base string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(base, "/"), http: hc}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorForStatus maps an HTTP status back to a sentinel error.
func errorForStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return common.ErrorBadRequest
	case http.StatusUnprocessableEntity:
		return common.ErrorSignatureMismatch
	case http.StatusUnauthorized:
		return common.ErrorUnauthenticated
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	}
	return common.ErrorInternal
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e rpc.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return fmt.Errorf("%w: %s", errorForStatus(resp.StatusCode), e.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned %s", errorForStatus(resp.StatusCode), resp.Status)
	}
	return nil
}

func (c *HTTPClient) Authenticate(ctx context.Context, ttl time.Duration) (*rpc.SessionInfo, error) {
	var info rpc.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/authenticate", &rpc.AuthenticateRequest{TTL: ttlString(ttl)}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) GetSession(ctx context.Context) (*rpc.SessionInfo, error) {
	var info rpc.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/session", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) PublishEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodPost, "/events", e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var out models.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context) ([]*models.Event, error) {
	var out rpc.EventList
	if err := c.do(ctx, http.MethodGet, "/events", nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *HTTPClient) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) RegisterUser(ctx context.Context, u *models.User) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, publicKey string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(publicKey), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]*models.User, error) {
	var out rpc.UserList
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
