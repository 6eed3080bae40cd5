package plan

import (
	"fmt"
	"strings"

	"github.com/syssam/sqlplan/entity"
)

// ValidationError represents a destructive or suspicious plan step.
type ValidationError struct {
	Ref     string
	Message string
	// Breaking indicates the step can lose data or break consumers.
	Breaking bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Ref, e.Message)
}

// ValidationResult holds the results of plan validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures plan validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropSchema bool
	allowDropTable  bool
	allowRecreate   bool
}

// AllowDropSchema downgrades schema drops from errors to warnings.
func AllowDropSchema() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropSchema = true
	}
}

// AllowDropTable downgrades table drops from errors to warnings.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowRecreate silences warnings about drop/create pairs of the same ref.
func AllowRecreate() ValidateOption {
	return func(c *validateConfig) {
		c.allowRecreate = true
	}
}

// RefKind extracts the entity kind encoded in a ref, e.g.
// "Schema:public|Table:user" yields KindTable.
func RefKind(ref string) entity.Kind {
	if i := strings.LastIndexByte(ref, '|'); i >= 0 {
		ref = ref[i+1:]
	}
	kind, _, ok := strings.Cut(ref, ":")
	if !ok {
		return ""
	}
	return entity.Kind(kind)
}

// Validate classifies the destructive steps of a plan. Dropping a table or
// a schema is an error unless explicitly allowed; a drop paired with a
// later create of the same ref is a recreation and reported as a warning.
//
// Example:
//
//	result := plan.Validate(ops)
//	if result.HasBreakingChanges() {
//	    log.Fatal("Breaking changes detected:", result)
//	}
func Validate(ops []Op, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	recreated := make(map[string]bool)
	dropped := make(map[string]bool)
	for _, op := range ops {
		switch op.Kind {
		case OpDrop:
			dropped[op.Ref] = true
		case OpCreate:
			if dropped[op.Ref] {
				recreated[op.Ref] = true
			}
		}
	}

	result := &ValidationResult{}
	for _, op := range ops {
		if op.Kind != OpDrop {
			continue
		}
		if recreated[op.Ref] {
			if !cfg.allowRecreate {
				result.Warnings = append(result.Warnings, &ValidationError{
					Ref:      op.Ref,
					Message:  "dropped and recreated",
					Breaking: RefKind(op.Ref) == entity.KindTable,
				})
			}
			continue
		}
		switch RefKind(op.Ref) {
		case entity.KindSchema:
			v := &ValidationError{Ref: op.Ref, Message: "schema is dropped", Breaking: true}
			if cfg.allowDropSchema {
				result.Warnings = append(result.Warnings, v)
			} else {
				result.Errors = append(result.Errors, v)
			}
		case entity.KindTable:
			v := &ValidationError{Ref: op.Ref, Message: "table is dropped", Breaking: true}
			if cfg.allowDropTable {
				result.Warnings = append(result.Warnings, v)
			} else {
				result.Errors = append(result.Errors, v)
			}
		default:
			result.Warnings = append(result.Warnings, &ValidationError{
				Ref:     op.Ref,
				Message: fmt.Sprintf("%s is dropped", strings.ToLower(string(RefKind(op.Ref)))),
			})
		}
	}
	return result
}
