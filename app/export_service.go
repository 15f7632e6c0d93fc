package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"statatab/domain/table"
	"statatab/internal/config"
	"statatab/internal/errors"
	"statatab/internal/loader"
	"statatab/ports"
)

// ExportService is the public entry point: it validates a raw configuration
// mapping and loads the configured variables from the external session.
type ExportService struct {
	loader *loader.Loader
	logger *slog.Logger
}

// NewExportService creates an ExportService over the given session bootstrap.
func NewExportService(bootstrap ports.SessionBootstrap, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		loader: loader.New(bootstrap, logger),
		logger: logger,
	}
}

// Run validates rawConfig, loads the configured variables and returns the
// resulting table. Validation and loading errors pass through with their
// taxonomy codes intact; anything unclassified is logged with its request
// context and wrapped as an internal error.
func (s *ExportService) Run(ctx context.Context, rawConfig map[string]any, valueLabels bool) (*table.Table, error) {
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID)

	spec, err := config.Validate(rawConfig)
	if err != nil {
		log.Error("configuration rejected", "error", err)
		return nil, err
	}

	result, err := s.loader.Load(ctx, spec, loader.Options{ValueLabels: valueLabels})
	if err != nil {
		if errors.IsAppError(err) {
			log.Error("data loading failed", "error", err)
			return nil, err
		}
		log.Error("unexpected error during export", "error", err)
		return nil, errors.Wrap(err, "unexpected error during export")
	}
	return result, nil
}
