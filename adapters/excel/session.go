package excel

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"statatab/domain/table"
	"statatab/ports"
)

// Session exposes one worksheet of an .xlsx workbook as an in-memory
// dataset. The first row of the sheet names the variables; each following
// row is one observation. Workbooks carry no value labels, so the
// ValueLabels flag has no effect here.
type Session struct {
	filePath string
	sheet    string
}

// OpenSession opens a workbook-backed session. The sheet defaults to the
// workbook's first sheet when empty.
func OpenSession(filePath, sheet string) (*Session, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filePath, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("workbook %s has no sheet %q", filePath, sheet)
	}
	return &Session{filePath: filePath, sheet: sheet}, nil
}

// ExportData reads the requested variables from the worksheet. Blank cells
// become the request's missing marker; everything else is coerced to a
// number when possible and kept as text otherwise.
func (s *Session) ExportData(ctx context.Context, req ports.ExportRequest) (*table.Table, error) {
	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.filePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		return table.New(req.Variables...), nil
	}

	colIndex := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		colIndex[strings.TrimSpace(name)] = i
	}
	indices := make([]int, len(req.Variables))
	for i, name := range req.Variables {
		idx, ok := colIndex[name]
		if !ok {
			return nil, fmt.Errorf("variable %s not found in sheet %s", name, s.sheet)
		}
		indices[i] = idx
	}

	out := table.New(req.Variables...)
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := make([]any, len(indices))
		for i, idx := range indices {
			var raw string
			if idx < len(row) {
				raw = strings.TrimSpace(row[idx])
			}
			cells[i] = coerceCell(raw, req.MissingVal)
		}
		if err := out.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerceCell(raw string, missing any) any {
	if raw == "" {
		return missing
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
