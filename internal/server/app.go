// Package server wires configuration, storage, services and transports
// together and runs them until the process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/auth"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/capacitanet/internal/server/rest"
	"github.com/dmitrijs2005/capacitanet/internal/server/services"
	"github.com/dmitrijs2005/capacitanet/internal/server/storage"

	gs "github.com/dmitrijs2005/capacitanet/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("record store init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	objects, err := newObjectStore(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	handler := rest.NewRouter(rest.Deps{
		Users:          services.NewUserService(repos.Users(), hasher, tokens, c, logger),
		Courses:        services.NewCourseService(repos.Courses(), objects, c, logger),
		Enrollment:     services.NewEnrollmentService(repos.Users(), repos.Courses(), c, logger),
		Tokens:         tokens,
		Logger:         logger,
		AllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{config: c, logger: logger, repos: repos, handler: handler}, nil
}

func newObjectStore(ctx context.Context, c *config.Config) (storage.ObjectStore, error) {
	if c.ObjectStoreDriver == config.ObjectStoreS3 {
		return storage.NewS3Store(ctx, c)
	}
	return storage.NewMemoryStore(c.S3Bucket), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a signal arrives or one of
// the servers fails, then releases the record store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return app.repos.Close()
}
