package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"statatab/domain/table"
	"statatab/ports"
)

// Session exposes a PostgreSQL relation as an in-memory dataset: columns
// are variables, rows are observations. SQL sources carry no value labels,
// so the ValueLabels flag has no effect here.
type Session struct {
	db       *sqlx.DB
	relation string
}

// OpenSession connects to the database and verifies the dataset relation
// exists.
func OpenSession(ctx context.Context, dsn, relation string) (*Session, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var exists bool
	err = db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, relation)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to look up relation %s: %w", relation, err)
	}
	if !exists {
		db.Close()
		return nil, fmt.Errorf("dataset relation %s does not exist", relation)
	}
	return &Session{db: db, relation: relation}, nil
}

// Close releases the database connection.
func (s *Session) Close() error {
	return s.db.Close()
}

// ExportData selects the requested variables from the dataset relation.
// SQL NULL becomes the request's missing marker.
func (s *Session) ExportData(ctx context.Context, req ports.ExportRequest) (*table.Table, error) {
	cols := make([]string, len(req.Variables))
	for i, name := range req.Variables {
		cols[i] = pq.QuoteIdentifier(name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(cols, ", "), pq.QuoteIdentifier(s.relation))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query variables %v: %w", req.Variables, err)
	}
	defer rows.Close()

	out := table.New(req.Variables...)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = normalizeValue(v, req.MissingVal)
		}
		if err := out.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading rows: %w", err)
	}
	return out, nil
}

func normalizeValue(v any, missing any) any {
	switch x := v.(type) {
	case nil:
		return missing
	case []byte:
		// lib/pq hands back text and numeric columns as raw bytes.
		return string(x)
	default:
		return x
	}
}
