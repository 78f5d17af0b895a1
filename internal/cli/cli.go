// Package cli implements the create-webhook and send-embed commands. Each
// command performs one network operation and reports the outcome as a
// process exit code.
package cli

import (
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/zachyzissou/stanton-times/internal/config"
	"github.com/zachyzissou/stanton-times/internal/credentials"
	"github.com/zachyzissou/stanton-times/internal/discord"
	"github.com/zachyzissou/stanton-times/internal/logger"
)

const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitNotConfigured = 2
)

// SessionFactory opens the bot session used by create-webhook.
type SessionFactory func(token string, guildReadyTimeout time.Duration, log *logger.Logger) (discord.Session, error)

// Env carries everything a command touches outside its arguments.
type Env struct {
	Resolver   credentials.Resolver
	Stdin      io.Reader
	Stderr     io.Writer
	HTTPClient discord.HTTPClient
	NewSession SessionFactory
}

// DefaultEnv wires the real process environment, filesystem and network.
func DefaultEnv() Env {
	return Env{
		Stdin:      os.Stdin,
		Stderr:     os.Stderr,
		NewSession: gatewaySession,
	}
}

func gatewaySession(token string, guildReadyTimeout time.Duration, log *logger.Logger) (discord.Session, error) {
	return discord.NewGatewaySession(token, guildReadyTimeout, log)
}

func (e Env) stderr() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

func (e Env) httpClient(timeout time.Duration) discord.HTTPClient {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	if timeout > 0 {
		return &http.Client{Timeout: timeout}
	}
	return http.DefaultClient
}

// loadExitCode maps a configuration loading error to an exit code.
func loadExitCode(log *logger.Logger, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, config.ErrUsage):
		log.Error("Invalid arguments", "error", err)
		return ExitNotConfigured
	default:
		log.Error("Failed to load configuration", "error", err)
		return ExitFailure
	}
}
