package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/kode4food/wfm"
	"github.com/kode4food/wfm/internal/config"
	"github.com/kode4food/wfm/internal/server"
	"github.com/kode4food/wfm/internal/store"
	"github.com/kode4food/wfm/pkg/bus"
	"github.com/kode4food/wfm/pkg/client"
	"github.com/kode4food/wfm/pkg/log"
)

type wfm struct {
	cfg        *config.Config
	bus        bus.Bus
	store      *store.Store
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrConnectRedis = errors.New("failed to connect to redis")
	ErrLoadSeed     = errors.New("failed to load seed file")
	ErrRegister     = errors.New("failed to register store")
)

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &wfm{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *wfm) run() error {
	if err := s.initializeBus(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *wfm) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Workflow gateway starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("transport", string(s.cfg.Transport)),
		slog.String("redis_addr", s.cfg.Redis.Addr),
		slog.Int("redis_db", s.cfg.Redis.DB),
		slog.String("redis_prefix", s.cfg.Redis.Prefix),
		slog.Duration("request_timeout", s.cfg.Redis.RequestTimeout),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

// initializeBus connects the configured transport. The in-process bus has
// no other responder, so the in-memory store answers on it; over Redis an
// external mediator does
func (s *wfm) initializeBus() error {
	switch s.cfg.Transport {
	case config.TransportRedis:
		rb := bus.NewRedis(s.cfg.Redis)
		ctx, cancel := context.WithTimeout(
			context.Background(), s.cfg.Redis.RequestTimeout,
		)
		defer cancel()
		if err := rb.Ping(ctx); err != nil {
			_ = rb.Close()
			return fmt.Errorf("%w: %w", ErrConnectRedis, err)
		}
		s.bus = rb
		return nil
	default:
		s.bus = bus.NewLocal()
		return s.initializeStore()
	}
}

func (s *wfm) initializeStore() error {
	s.store = store.New()
	if s.cfg.SeedFile != "" {
		seed, err := store.LoadSeed(s.cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoadSeed, err)
		}
		if err := s.store.Apply(seed); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadSeed, err)
		}
	}
	if err := s.store.Register(s.bus); err != nil {
		return fmt.Errorf("%w: %w", ErrRegister, err)
	}
	return nil
}

func (s *wfm) startServer() {
	s.apiServer = server.NewServer(client.New(s.bus))
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *wfm) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.Close()

	if err := s.bus.Close(); err != nil {
		slog.Error("Bus shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
