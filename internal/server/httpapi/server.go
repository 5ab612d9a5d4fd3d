// Package httpapi exposes the relay over HTTP with gorilla/mux.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/auth"
)

type EventService interface {
	Publish(ctx context.Context, session *models.Session, e *models.Event) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, session *models.Session, id string) error
}

type SessionService interface {
	Authenticate(ctx context.Context, token string, ttl time.Duration) (*models.Session, error)
	Resolve(ctx context.Context, id string) (*models.Session, error)
}

type UserService interface {
	Register(ctx context.Context, session *models.Session, u *models.User) (*models.User, error)
	Get(ctx context.Context, publicKey string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

const shutdownTimeout = 5 * time.Second

type Server struct {
	address  string
	logger   logging.Logger
	events   EventService
	sessions SessionService
	users    UserService
	gate     *auth.Gate
	router   *mux.Router
}

func NewServer(a string, l logging.Logger, es EventService, ss SessionService, us UserService) *Server {
	s := &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		events:   es,
		sessions: ss,
		users:    us,
		gate:     auth.NewGate(ss),
	}
	s.router = s.routes()
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc("/ping", s.ping).Methods(http.MethodGet)
	r.HandleFunc("/authenticate", s.authenticate).Methods(http.MethodPost)

	r.Handle("/session", s.protected(s.getSession)).Methods(http.MethodGet)

	r.Handle("/events", s.protected(s.listEvents)).Methods(http.MethodGet)
	r.Handle("/events", s.protected(s.publishEvent)).Methods(http.MethodPost)
	r.Handle("/events/{id}", s.protected(s.getEvent)).Methods(http.MethodGet)
	r.Handle("/events/{id}", s.protected(s.deleteEvent)).Methods(http.MethodDelete)

	r.Handle("/users", s.protected(s.listUsers)).Methods(http.MethodGet)
	r.Handle("/users", s.protected(s.registerUser)).Methods(http.MethodPost)
	r.Handle("/users/{key}", s.protected(s.getUser)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(notFound)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
