package schema

import "fmt"

// Violation represents a single structural rule failure.
type Violation struct {
	Path   string // Config location, e.g. "nodes.confirm.functions[0]"
	Reason string // Human-readable reason for failure
}

func (v *Violation) Error() string {
	if v.Path == "" {
		return v.Reason
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Reason)
}

// SchemaViolation aggregates every structural violation found in a scenario
// configuration. It is always fatal to construction; no partial scenario is
// ever returned alongside it.
type SchemaViolation struct {
	Violations []error
}

func (e *SchemaViolation) Error() string {
	if len(e.Violations) == 1 {
		return "invalid scenario: " + e.Violations[0].Error()
	}
	msg := fmt.Sprintf("invalid scenario: %d violations:\n", len(e.Violations))
	for i, err := range e.Violations {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Violations returns all individual violations if err is a SchemaViolation.
// Otherwise returns nil.
func Violations(err error) []error {
	if sv, ok := err.(*SchemaViolation); ok {
		return sv.Violations
	}
	return nil
}
