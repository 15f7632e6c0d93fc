// Package loader fetches configured variables from an external session and
// returns them as a table.
package loader

import (
	"context"
	"fmt"
	"log/slog"

	"statatab/domain/table"
	"statatab/internal/config"
	"statatab/internal/errors"
	"statatab/ports"
)

// Options controls how the session exports data.
type Options struct {
	// ValueLabels asks the source for human-readable value labels instead of
	// raw coded values.
	ValueLabels bool
}

// Loader requests the variables named by a TableSpec from an external
// session. It is synchronous and stateless; a failed session call fails the
// whole load with no retries or partial results.
type Loader struct {
	bootstrap ports.SessionBootstrap
	logger    *slog.Logger
}

// New creates a Loader over the given session bootstrap.
func New(bootstrap ports.SessionBootstrap, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{bootstrap: bootstrap, logger: logger}
}

// RequiredVariables returns the set of variables a spec needs from the
// session: row, column and value variables plus the optional weight and
// secondary reference. Duplicates across fields collapse to one request;
// first-seen order is preserved so requests stay deterministic.
func RequiredVariables(spec *config.TableSpec) []string {
	seen := make(map[string]bool)
	var vars []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	for _, v := range spec.RowVars {
		add(v)
	}
	for _, v := range spec.ColVars {
		add(v)
	}
	add(spec.ValueVar)
	add(spec.PWeight)
	add(spec.SecondaryRef)
	return vars
}

// Load initializes the session and exports the spec's required variables.
// Bootstrap failures and export faults both surface as DATA_LOADER_ERROR;
// errors already carrying that code pass through unchanged so messages do
// not nest. An empty result is a warning, not an error.
func (l *Loader) Load(ctx context.Context, spec *config.TableSpec, opts Options) (*table.Table, error) {
	vars := RequiredVariables(spec)

	l.logger.Info("loading data from session", "variables", vars)

	sess, err := l.bootstrap.Initialize(ctx)
	if err != nil {
		return nil, errors.DataLoaderWrap(err, "failed to initialize session")
	}

	result, err := sess.ExportData(ctx, ports.ExportRequest{
		Variables:   vars,
		ValueLabels: opts.ValueLabels,
		MissingVal:  table.Missing,
	})
	if err != nil {
		return nil, errors.DataLoaderWrap(err,
			fmt.Sprintf("failed to export data from session, ensure variables %v exist", vars))
	}

	if result.IsEmpty() {
		l.logger.Warn("session returned an empty table", "variables", vars)
	} else {
		l.logger.Info("loaded table from session",
			"rows", result.NumRows(), "columns", result.NumCols())
	}
	return result, nil
}
