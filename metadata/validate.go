package metadata

import (
	"fmt"
	"strings"
)

// Issue is a single finding of Validate.
type Issue struct {
	Entity   string
	Property string
	Message  string
}

func (i *Issue) Error() string {
	if i.Property != "" {
		return fmt.Sprintf("%s.%s: %s", i.Entity, i.Property, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Entity, i.Message)
}

// ValidationResult holds the results of metadata validation.
type ValidationResult struct {
	Errors   []*Issue
	Warnings []*Issue
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// Validate reports configurations the graph accepts but the bootstrap or
// the condition compiler cannot serve.
//
// Errors: deleted-date properties declared on subclasses and to-many
// associations crossing a store boundary. Warnings: deleted-date
// properties without a mapped column (no filter will be injected) and
// cross-store to-one associations without a reference id (conditions on
// them pass through unchanged).
func Validate(g *Graph) *ValidationResult {
	result := &ValidationResult{}
	for _, e := range g.order {
		for _, p := range e.Declared {
			switch {
			case p.DeletedDate && !e.IsRoot():
				result.Errors = append(result.Errors, &Issue{
					Entity:   e.Name,
					Property: p.Name,
					Message:  "soft deletion property is not supported on inherited entities",
				})
			case p.DeletedDate && p.Column == "":
				result.Warnings = append(result.Warnings, &Issue{
					Entity:   e.Name,
					Property: p.Name,
					Message:  "deleted date has no column mapping",
				})
			case p.Kind() == ToMany && p.target != nil && p.target.Store != e.Store:
				result.Errors = append(result.Errors, &Issue{
					Entity:   e.Name,
					Property: p.Name,
					Message:  fmt.Sprintf("to-many association crosses stores (%s -> %s)", e.Store, p.target.Store),
				})
			case p.Kind() == ToOne && p.target != nil && p.target.Store != e.Store &&
				g.CrossStoreReferenceID(e.Store, p) == "":
				result.Warnings = append(result.Warnings, &Issue{
					Entity:   e.Name,
					Property: p.Name,
					Message:  fmt.Sprintf("cross-store reference to %s has no reference id", p.target.Name),
				})
			}
		}
	}
	return result
}
