// Package summary computes per-column descriptive statistics for a loaded
// table.
package summary

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"statatab/domain/table"
)

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	MissingCount int     `json:"missing_count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	// WeightedMean is set when a weight column was supplied.
	WeightedMean *float64 `json:"weighted_mean,omitempty"`
}

// Summarize computes statistics for every numeric column of the table.
// Non-numeric columns are skipped. When weightVar names a column, each
// summary also carries a weight-adjusted mean; observations where either
// the value or the weight is missing are dropped from that estimate.
func Summarize(t *table.Table, weightVar string) ([]ColumnSummary, error) {
	var weightCol *table.Column
	if weightVar != "" {
		weightCol = t.Column(weightVar)
		if weightCol == nil {
			return nil, fmt.Errorf("weight column %s not found in table", weightVar)
		}
	}

	var summaries []ColumnSummary
	for i := range t.Columns {
		col := &t.Columns[i]
		values, err := col.Float64s()
		if err != nil {
			// Not a numeric column.
			continue
		}
		if len(values) == 0 {
			summaries = append(summaries, ColumnSummary{
				Name:         col.Name,
				MissingCount: col.MissingCount(),
			})
			continue
		}

		s, err := summarizeValues(col.Name, values)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize column %s: %w", col.Name, err)
		}
		s.MissingCount = col.MissingCount()

		if weightCol != nil && col.Name != weightVar {
			if wm, ok := weightedMean(col, weightCol); ok {
				s.WeightedMean = &wm
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func summarizeValues(name string, values []float64) (ColumnSummary, error) {
	s := ColumnSummary{Name: name, Count: len(values)}

	var err error
	if s.Mean, err = stats.Mean(values); err != nil {
		return s, err
	}
	if len(values) > 1 {
		if s.StdDev, err = stats.StandardDeviation(values); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(values); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(values); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(values); err != nil {
		return s, err
	}
	return s, nil
}

// weightedMean pairs value and weight cells row by row so the two slices
// stay aligned even when cells are missing.
func weightedMean(col, weightCol *table.Column) (float64, bool) {
	var values, weights []float64
	for i := range col.Values {
		v, okV := cellFloat(col.Values[i])
		w, okW := cellFloat(weightCol.Values[i])
		if !okV || !okW || w <= 0 {
			continue
		}
		values = append(values, v)
		weights = append(weights, w)
	}
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, weights), true
}

func cellFloat(v any) (float64, bool) {
	if table.IsMissing(v) {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
