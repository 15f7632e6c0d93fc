package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"statatab/internal/errors"
)

// TableSpec is the validated export configuration. It is constructed once
// per request by Validate and never mutated afterwards.
type TableSpec struct {
	RowVars      []string
	ColVars      []string
	ValueVar     string
	PWeight      string
	SecondaryRef string
}

// Validate checks a raw configuration mapping against the export schema and
// returns a TableSpec, or a CONFIG_INVALID error.
//
// Validation runs in two phases. The structural phase collects every basic
// problem (missing fields, wrong types, empty lists, duplicates within a
// list) and reports them together in one error. The semantic phase runs only
// on a structurally sound spec and checks that value_var, pweight and
// secondary_ref do not collide with the row/col index variables.
func Validate(raw map[string]any) (*TableSpec, error) {
	spec, problems := parseStructural(raw)
	if len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = "- " + p
		}
		return nil, errors.ConfigValidation("configuration validation failed:\n" + strings.Join(lines, "\n"))
	}
	if err := checkDistinctVariables(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// parseStructural performs the first validation phase. It never stops at the
// first problem; callers get the complete list in one pass.
func parseStructural(raw map[string]any) (*TableSpec, []string) {
	var problems []string
	spec := &TableSpec{}

	spec.RowVars = append(spec.RowVars, parseVarList(raw, "row_var", &problems)...)
	spec.ColVars = append(spec.ColVars, parseVarList(raw, "col_var", &problems)...)

	if v, ok := raw["value_var"]; !ok {
		problems = append(problems, "value_var: field is required")
	} else if s, ok := v.(string); !ok {
		problems = append(problems, fmt.Sprintf("value_var: expected a string, got %T", v))
	} else {
		spec.ValueVar = s
	}

	spec.PWeight = parseOptionalVar(raw, "pweight", &problems)
	spec.SecondaryRef = parseOptionalVar(raw, "secondary_ref", &problems)

	return spec, problems
}

// parseVarList validates one of the required variable-name lists. Both
// []string and []any inputs are accepted so decoded JSON maps work directly.
func parseVarList(raw map[string]any, field string, problems *[]string) []string {
	v, ok := raw[field]
	if !ok {
		*problems = append(*problems, field+": field is required")
		return nil
	}

	var names []string
	switch list := v.(type) {
	case []string:
		names = list
	case []any:
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				*problems = append(*problems, fmt.Sprintf("%s: expected string entries, got %T", field, item))
				return nil
			}
			names = append(names, s)
		}
	default:
		*problems = append(*problems, fmt.Sprintf("%s: expected a list of strings, got %T", field, v))
		return nil
	}

	if len(names) == 0 {
		*problems = append(*problems, field+": must contain at least one variable name")
		return nil
	}
	if dups := duplicates(names); len(dups) > 0 {
		*problems = append(*problems, fmt.Sprintf("%s: duplicate variable names %v", field, dups))
	}
	return names
}

func parseOptionalVar(raw map[string]any, field string, problems *[]string) string {
	v, ok := raw[field]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*problems = append(*problems, fmt.Sprintf("%s: expected a string, got %T", field, v))
		return ""
	}
	return s
}

// checkDistinctVariables is the semantic phase: the core variables
// (value_var, pweight, secondary_ref) must be distinct from each other and
// must not appear among the index variables. A name shared between row_var
// and col_var is allowed; only duplicates within a single list are rejected,
// and those are caught in the structural phase.
func checkDistinctVariables(spec *TableSpec) error {
	core := map[string]bool{spec.ValueVar: true}
	var coreDups []string
	for _, name := range []string{spec.PWeight, spec.SecondaryRef} {
		if name == "" {
			continue
		}
		if core[name] {
			coreDups = append(coreDups, name)
		}
		core[name] = true
	}
	if len(coreDups) > 0 {
		sort.Strings(coreDups)
		return errors.ConfigValidation(fmt.Sprintf(
			"overlap between core variables (value_var, pweight, secondary_ref): %v", coreDups))
	}

	var overlap []string
	seen := map[string]bool{}
	for _, name := range append(append([]string{}, spec.RowVars...), spec.ColVars...) {
		if core[name] && !seen[name] {
			overlap = append(overlap, name)
			seen[name] = true
		}
	}
	if len(overlap) > 0 {
		sort.Strings(overlap)
		return errors.ConfigValidation(fmt.Sprintf(
			"overlap between index variables (row_var, col_var) and core variables (value_var, pweight, secondary_ref): %v", overlap))
	}
	return nil
}

// duplicates returns each name that appears more than once, in first-seen
// order.
func duplicates(names []string) []string {
	counts := map[string]int{}
	for _, n := range names {
		counts[n]++
	}
	var dups []string
	reported := map[string]bool{}
	for _, n := range names {
		if counts[n] > 1 && !reported[n] {
			dups = append(dups, n)
			reported[n] = true
		}
	}
	return dups
}

// Bootstrap holds the two pieces of configuration the session bootstrap
// needs: where the external statistical runtime lives and which edition of
// it to initialize. It is passed explicitly at call time rather than read
// from ambient process state, so the bootstrap stays mockable.
type Bootstrap struct {
	RuntimePath string
	Edition     string
}

// BootstrapFromEnv builds a Bootstrap from SESSION_RUNTIME_PATH and
// SESSION_EDITION. Presence is checked later by the bootstrap itself, so an
// incomplete environment still produces a value here.
func BootstrapFromEnv() Bootstrap {
	return Bootstrap{
		RuntimePath: getEnvOrDefault("SESSION_RUNTIME_PATH", ""),
		Edition:     getEnvOrDefault("SESSION_EDITION", ""),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
