package app

import (
	"context"
	stderrors "errors"
	"testing"

	"statatab/domain/table"
	"statatab/internal/errors"
	"statatab/ports"
)

type fakeSession struct {
	result *table.Table
	err    error
}

func (f *fakeSession) ExportData(ctx context.Context, req ports.ExportRequest) (*table.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeBootstrap struct {
	session ports.Session
	err     error
	calls   int
}

func (f *fakeBootstrap) Initialize(ctx context.Context) (ports.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func validRawConfig() map[string]any {
	return map[string]any{
		"row_var":   []string{"region"},
		"col_var":   []string{"year"},
		"value_var": "income",
	}
}

func TestRun_Success(t *testing.T) {
	result := table.New("region", "year", "income")
	if err := result.AppendRow("north", 2021.0, 100.0); err != nil {
		t.Fatal(err)
	}
	boot := &fakeBootstrap{session: &fakeSession{result: result}}

	got, err := NewExportService(boot, nil).Run(context.Background(), validRawConfig(), true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.NumRows() != 1 {
		t.Errorf("expected 1 row, got %d", got.NumRows())
	}
}

func TestRun_InvalidConfigNeverReachesSession(t *testing.T) {
	boot := &fakeBootstrap{session: &fakeSession{result: table.New()}}

	raw := map[string]any{
		"row_var":   []string{"income"},
		"col_var":   []string{"year"},
		"value_var": "income",
	}
	_, err := NewExportService(boot, nil).Run(context.Background(), raw, true)
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	if !errors.IsConfigValidation(err) {
		t.Errorf("expected CONFIG_INVALID, got code %s", errors.GetCode(err))
	}
	if boot.calls != 0 {
		t.Error("session must not be touched when validation fails")
	}
}

func TestRun_LoaderErrorPassesThroughUnchanged(t *testing.T) {
	cause := errors.DataLoader("runtime not configured")
	boot := &fakeBootstrap{err: cause}

	_, err := NewExportService(boot, nil).Run(context.Background(), validRawConfig(), true)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("taxonomy error was rewrapped: %v", err)
	}
}

func TestRun_EmptyResultSucceeds(t *testing.T) {
	boot := &fakeBootstrap{session: &fakeSession{result: table.New("region", "year", "income")}}

	got, err := NewExportService(boot, nil).Run(context.Background(), validRawConfig(), false)
	if err != nil {
		t.Fatalf("empty result must not fail: %v", err)
	}
	if !got.IsEmpty() {
		t.Error("expected an empty table")
	}
}
