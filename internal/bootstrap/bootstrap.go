// Package bootstrap turns explicit runtime configuration into a live
// session handle. It owns the fatal preconditions: both the runtime path
// and the edition must be known before any data request is attempted.
package bootstrap

import (
	"context"
	"log/slog"

	"statatab/internal/config"
	"statatab/internal/errors"
	"statatab/ports"
)

// Opener establishes a session against a concrete backend. Adapters supply
// one; tests supply fakes.
type Opener func(ctx context.Context, cfg config.Bootstrap) (ports.Session, error)

// Bootstrap implements ports.SessionBootstrap over an injected Opener.
type Bootstrap struct {
	cfg    config.Bootstrap
	open   Opener
	logger *slog.Logger
}

// New creates a Bootstrap for the given runtime configuration.
func New(cfg config.Bootstrap, open Opener, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrap{cfg: cfg, open: open, logger: logger}
}

// Initialize validates the runtime configuration and opens a session.
// Every failure surfaces as a DATA_LOADER_ERROR so callers see one error
// taxonomy regardless of which backend is behind the opener.
func (b *Bootstrap) Initialize(ctx context.Context) (ports.Session, error) {
	b.logger.Debug("setting up session runtime",
		"runtime_path", b.cfg.RuntimePath, "edition", b.cfg.Edition)

	if b.cfg.RuntimePath == "" {
		return nil, errors.DataLoader("session runtime path not configured, cannot initialize session")
	}
	if b.cfg.Edition == "" {
		return nil, errors.DataLoader("session edition not configured, cannot initialize session")
	}
	if b.open == nil {
		return nil, errors.DataLoader("no session backend configured")
	}

	sess, err := b.open(ctx, b.cfg)
	if err != nil {
		return nil, errors.DataLoaderWrap(err, "failed to initialize session runtime")
	}
	b.logger.Info("session runtime initialized", "edition", b.cfg.Edition)
	return sess, nil
}
