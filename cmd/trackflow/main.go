// Command trackflow is the command-line front end for TrackFlow: it signs
// users in, registers businesses, and issues and accepts invitations.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trackflow-app/trackflow/internal/client"
	"github.com/trackflow-app/trackflow/internal/config"
	"github.com/trackflow-app/trackflow/internal/onboarding"
	"github.com/trackflow-app/trackflow/internal/session"
)

// app carries the wiring shared by all subcommands.
type app struct {
	apiURL      string
	sessionFile string
	timeout     time.Duration

	logger  *zap.Logger
	store   *session.Store
	client  *client.Client
	orch    *onboarding.Orchestrator
	issuer  *onboarding.Issuer
	printer *printer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{printer: newPrinter(os.Stdout, os.Stderr)}
	root := a.rootCommand()

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		a.printer.failure(err)
		os.Exit(exitCode(err))
	}
}

func (a *app) init() error {
	if err := config.Load(); err != nil {
		return err
	}
	if a.apiURL == "" {
		a.apiURL = config.APIURL()
	}
	if a.timeout <= 0 {
		a.timeout = config.RequestTimeout()
	}
	if a.sessionFile == "" {
		a.sessionFile = config.SessionFile()
	}

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		return err
	}
	a.logger = logger

	store, err := session.Open(session.NewFileBackend(a.sessionFile), logger.Named("session"))
	if err != nil {
		return err
	}
	a.store = store

	a.client = client.New(a.apiURL,
		client.WithTokenSource(store.AccessToken),
		client.WithLogger(logger.Named("client")),
		client.WithHTTPClient(&http.Client{Timeout: a.timeout}),
	)
	a.orch = onboarding.NewOrchestrator(a.client, store, logger.Named("onboarding"))
	a.issuer = onboarding.NewIssuer(a.client, store, logger.Named("issuer"))
	return nil
}

// newLogger writes human-readable logs to stderr so stdout stays parseable.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// exitCode distinguishes user-fixable failures from infrastructure ones.
func exitCode(err error) int {
	switch onboarding.KindOf(err) {
	case onboarding.KindValidation:
		return 2
	case onboarding.KindAuth:
		return 3
	case onboarding.KindNetwork, onboarding.KindServer:
		return 4
	default:
		return 1
	}
}
