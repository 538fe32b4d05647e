package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/iwvelando/rebalance-simulator/internal/server"
	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// serverFlags are shared by the commands that host the web UI.
type serverFlags struct {
	configPath    string
	address       string
	maxUploadSize string
	logLevel      string
}

func (s *serverFlags) register(f *flag.FlagSet, defaultAddress string) {
	f.StringVar(&s.configPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.StringVar(&s.address, "addr", defaultAddress, "listen address override")
	f.StringVar(&s.maxUploadSize, "max-upload-size", "", "maximum request size override (e.g. 256K, 1M)")
	f.StringVar(&s.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// load reads the server configuration and applies the command line overrides.
func (s *serverFlags) load() (*server.Config, *zap.Logger, error) {
	cfg, err := server.LoadConfig(s.configPath)
	if err != nil {
		return nil, nil, err
	}
	if s.address != "" {
		cfg.Address = s.address
	}
	if strings.TrimSpace(s.maxUploadSize) != "" {
		size, err := server.ParseSize(s.maxUploadSize)
		if err != nil {
			return nil, nil, err
		}
		cfg.SetUploadSizeBytes(size)
	}

	logger, err := initializeLogger(cfg.Logging, s.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// listen opens the configured address and returns the URL a browser can use.
func listen(address string) (net.Listener, string, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, "", fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	actual := listener.Addr().String()
	url := "http://" + actual
	if strings.HasPrefix(actual, "[::]:") || strings.HasPrefix(actual, "0.0.0.0:") || strings.HasPrefix(actual, ":") {
		url = "http://localhost:" + actual[strings.LastIndex(actual, ":")+1:]
	}
	return listener, url, nil
}

func newHTTPServer(logger *zap.Logger, cfg *server.Config) *http.Server {
	return &http.Server{
		Handler:           server.NewHandler(logger, cfg.UploadSizeBytes(), cfg.MaxChartSessions, version),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type serveCmd struct {
	serverFlags
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the web UI and simulation API" }
func (*serveCmd) Usage() string {
	return `serve [-server-config <file>] [-addr <host:port>] [-max-upload-size <size>]

  Serves the interactive simulator on the configured address until interrupted.
`
}

func (p *serveCmd) SetFlags(f *flag.FlagSet) {
	p.register(f, "")
}

func (p *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := p.load()
	if err != nil {
		fatalf("failed to start server", err)
		return subcommands.ExitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, logger, cfg); err != nil {
		logger.Error("server failed",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, logger *zap.Logger, cfg *server.Config) error {
	listener, url, err := listen(cfg.Address)
	if err != nil {
		return err
	}

	srv := newHTTPServer(logger, cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	logger.Info("server listening",
		zap.String("op", "main.serve"),
		zap.String("url", url),
		zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		zap.Int("maxChartSessions", cfg.MaxChartSessions),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("server stopped", zap.String("op", "main.serve"))
	return nil
}

type uiCmd struct {
	serverFlags
}

func (*uiCmd) Name() string     { return "ui" }
func (*uiCmd) Synopsis() string { return "open the simulator in a desktop window" }
func (*uiCmd) Usage() string {
	return `ui [-server-config <file>]

  Starts the web UI on a local port and opens it in an embedded browser window.
  Not available in console builds; use serve instead.
`
}

func (p *uiCmd) SetFlags(f *flag.FlagSet) {
	p.register(f, "localhost:0")
}

func (p *uiCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := p.load()
	if err != nil {
		fatalf("failed to start desktop window", err)
		return subcommands.ExitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := runEmbeddedUI(logger, cfg); err != nil {
		logger.Error("desktop window failed",
			zap.String("op", "main.ui"),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
