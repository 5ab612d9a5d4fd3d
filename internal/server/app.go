// Package server wires the relay together: in-memory repositories, services,
// and the HTTP and gRPC listeners, run under one cancellable context with
// signal handling.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sigrelay/internal/buildinfo"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/server/config"
	gs "github.com/dmitrijs2005/sigrelay/internal/server/grpc"
	"github.com/dmitrijs2005/sigrelay/internal/server/httpapi"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sigrelay/internal/server/services"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	repomanager    repomanager.RepositoryManager
	eventService   *services.EventService
	sessionService *services.SessionService
	userService    *services.UserService
}

// NewApp builds the application. Logs go to w as JSON at the configured
// level.
func NewApp(c *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.New(w, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	m := repomanager.NewInMemoryRepositoryManager()

	return &App{
		config:         c,
		logger:         logger,
		repomanager:    m,
		eventService:   services.NewEventService(m, logger),
		sessionService: services.NewSessionService(m, c, logger),
		userService:    services.NewUserService(m, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) runners() []runner {
	var rs []runner
	if app.config.HTTPAddr != "" {
		rs = append(rs, httpapi.NewServer(app.config.HTTPAddr, app.logger,
			app.eventService, app.sessionService, app.userService))
	}
	if app.config.GRPCAddr != "" {
		rs = append(rs, gs.NewGRPCServer(app.config.GRPCAddr, app.logger,
			app.eventService, app.sessionService, app.userService))
	}
	return rs
}

// Run starts every listener and blocks until ctx is cancelled, a signal
// arrives or a listener fails. The first listener error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "build", buildinfo.String())

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for _, r := range app.runners() {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				once.Do(func() { firstErr = err })
				cancelFunc()
			}
		}(r)
	}
	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return firstErr
}
