package loader

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"statatab/domain/table"
	"statatab/internal/config"
	"statatab/internal/errors"
	"statatab/ports"
)

type fakeSession struct {
	result  *table.Table
	err     error
	lastReq ports.ExportRequest
}

func (f *fakeSession) ExportData(ctx context.Context, req ports.ExportRequest) (*table.Table, error) {
	f.lastReq = req
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

func TestRequiredVariables(t *testing.T) {
	tests := []struct {
		name string
		spec config.TableSpec
		want []string
	}{
		{
			name: "basic union",
			spec: config.TableSpec{
				RowVars:  []string{"region"},
				ColVars:  []string{"year"},
				ValueVar: "income",
			},
			want: []string{"region", "year", "income"},
		},
		{
			name: "optional fields included",
			spec: config.TableSpec{
				RowVars:      []string{"region"},
				ColVars:      []string{"year"},
				ValueVar:     "income",
				PWeight:      "wt",
				SecondaryRef: "ref",
			},
			want: []string{"region", "year", "income", "wt", "ref"},
		},
		{
			name: "cross-list duplicates collapse",
			spec: config.TableSpec{
				RowVars:  []string{"x", "y"},
				ColVars:  []string{"x"},
				ValueVar: "income",
			},
			want: []string{"x", "y", "income"},
		},
		{
			name: "ordering does not change membership",
			spec: config.TableSpec{
				RowVars:  []string{"year"},
				ColVars:  []string{"region"},
				ValueVar: "income",
			},
			want: []string{"year", "region", "income"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredVariables(&tt.spec)
			if len(got) != len(tt.want) {
				t.Fatalf("RequiredVariables = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("RequiredVariables = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestLoad_PassesRequestToSession(t *testing.T) {
	result := table.New("region", "year", "income")
	if err := result.AppendRow("north", 2021.0, 100.0); err != nil {
		t.Fatal(err)
	}
	sess := &fakeSession{result: result}
	boot := &fakeBootstrap{session: sess}

	spec := &config.TableSpec{
		RowVars:  []string{"region"},
		ColVars:  []string{"year"},
		ValueVar: "income",
	}
	got, err := New(boot, nil).Load(context.Background(), spec, Options{ValueLabels: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.NumRows() != 1 {
		t.Errorf("expected 1 row, got %d", got.NumRows())
	}
	if boot.calls != 1 {
		t.Errorf("expected a single bootstrap call, got %d", boot.calls)
	}
	if !sess.lastReq.ValueLabels {
		t.Error("ValueLabels flag was not forwarded")
	}
	if !table.IsMissing(sess.lastReq.MissingVal) {
		t.Error("missing marker was not forwarded")
	}
	if len(sess.lastReq.Variables) != 3 {
		t.Errorf("expected 3 requested variables, got %v", sess.lastReq.Variables)
	}
}

func TestLoad_BootstrapFailurePassesThrough(t *testing.T) {
	cause := errors.DataLoader("session runtime path not configured, cannot initialize session")
	boot := &fakeBootstrap{err: cause}

	spec := &config.TableSpec{RowVars: []string{"a"}, ColVars: []string{"b"}, ValueVar: "c"}
	_, err := New(boot, nil).Load(context.Background(), spec, Options{})
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	// Bootstrap errors are already classified and must not be re-wrapped.
	if !stderrors.Is(err, cause) {
		t.Errorf("bootstrap error was rewrapped: %v", err)
	}
	if !errors.IsDataLoader(err) {
		t.Errorf("expected DATA_LOADER_ERROR, got code %s", errors.GetCode(err))
	}
}

func TestLoad_ExportFaultIsWrapped(t *testing.T) {
	cause := stderrors.New("variable inc0me not found")
	boot := &fakeBootstrap{session: &fakeSession{err: cause}}

	spec := &config.TableSpec{
		RowVars:  []string{"region"},
		ColVars:  []string{"year"},
		ValueVar: "inc0me",
	}
	_, err := New(boot, nil).Load(context.Background(), spec, Options{})
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !errors.IsDataLoader(err) {
		t.Errorf("expected DATA_LOADER_ERROR, got code %s", errors.GetCode(err))
	}
	if !stderrors.Is(err, cause) {
		t.Error("original cause was lost")
	}
	// The wrapped message names the variables that were requested.
	for _, name := range []string{"region", "year", "inc0me"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name variable %q", err.Error(), name)
		}
	}
}

func TestLoad_ClassifiedExportFaultNotDoubleWrapped(t *testing.T) {
	cause := errors.DataLoader("session fault")
	boot := &fakeBootstrap{session: &fakeSession{err: cause}}

	spec := &config.TableSpec{RowVars: []string{"a"}, ColVars: []string{"b"}, ValueVar: "c"}
	_, err := New(boot, nil).Load(context.Background(), spec, Options{})
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if !stderrors.Is(err, cause) {
		t.Errorf("classified error was rewrapped: %v", err)
	}
	if err.Error() != cause.Error() {
		t.Errorf("error message changed: %q -> %q", cause.Error(), err.Error())
	}
}

func TestLoad_EmptyTableIsSuccess(t *testing.T) {
	boot := &fakeBootstrap{session: &fakeSession{result: table.New("a", "b", "c")}}

	spec := &config.TableSpec{RowVars: []string{"a"}, ColVars: []string{"b"}, ValueVar: "c"}
	got, err := New(boot, nil).Load(context.Background(), spec, Options{})
	if err != nil {
		t.Fatalf("empty result must not fail: %v", err)
	}
	if !got.IsEmpty() {
		t.Error("expected an empty table")
	}
}
