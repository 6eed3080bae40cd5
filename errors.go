package sqlplan

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failure modes. Concrete error types
// below match these through errors.Is, so callers can branch on the class
// of a failure without unwrapping the concrete type.
var (
	// ErrDuplicateRef is returned when an entity ref is registered twice.
	ErrDuplicateRef = errors.New("sqlplan: duplicate entity ref")

	// ErrUnknownRef is returned when a dependency ref cannot be resolved
	// within the registry that is expected to contain it.
	ErrUnknownRef = errors.New("sqlplan: unknown entity ref")

	// ErrCycle is returned when the dependency graph is not acyclic.
	ErrCycle = errors.New("sqlplan: dependency cycle detected")

	// ErrConstruction is returned when an entity is built from invalid input.
	ErrConstruction = errors.New("sqlplan: invalid entity construction")

	// ErrInvalidTaggedText is returned when a SQL fragment carries unbalanced
	// sentinel code points.
	ErrInvalidTaggedText = errors.New("sqlplan: invalid tagged text")

	// ErrInvalidFormat is returned when an unsupported text rendering mode
	// is requested.
	ErrInvalidFormat = errors.New("sqlplan: invalid format mode")
)

// DuplicateRefError reports a registration attempt for a ref that already
// exists in the registry.
type DuplicateRefError struct {
	ref string
}

// NewDuplicateRefError returns a new DuplicateRefError for the given ref.
func NewDuplicateRefError(ref string) *DuplicateRefError {
	return &DuplicateRefError{ref: ref}
}

// Error returns the error string.
func (e *DuplicateRefError) Error() string {
	return fmt.Sprintf("sqlplan: ref %q already registered", e.ref)
}

// Is reports whether the target error matches DuplicateRefError.
func (e *DuplicateRefError) Is(err error) bool {
	return err == ErrDuplicateRef
}

// Ref returns the conflicting entity ref.
func (e *DuplicateRefError) Ref() string {
	return e.ref
}

// IsDuplicateRef returns true if the error is a DuplicateRefError.
func IsDuplicateRef(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateRefError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateRef)
}

// UnknownRefError reports a dependency ref that is not present in the
// registry at the point it is required.
type UnknownRefError struct {
	ref string
	// by is the ref of the entity that required the lookup, if any.
	by string
}

// NewUnknownRefError returns a new UnknownRefError for the given ref.
func NewUnknownRefError(ref string) *UnknownRefError {
	return &UnknownRefError{ref: ref}
}

// NewUnknownRefErrorBy returns a new UnknownRefError recording the entity
// that required the missing ref.
func NewUnknownRefErrorBy(ref, by string) *UnknownRefError {
	return &UnknownRefError{ref: ref, by: by}
}

// Error returns the error string.
func (e *UnknownRefError) Error() string {
	if e.by != "" {
		return fmt.Sprintf("sqlplan: ref %q required by %q is not registered", e.ref, e.by)
	}
	return fmt.Sprintf("sqlplan: ref %q is not registered", e.ref)
}

// Is reports whether the target error matches UnknownRefError.
func (e *UnknownRefError) Is(err error) bool {
	return err == ErrUnknownRef
}

// Ref returns the missing entity ref.
func (e *UnknownRefError) Ref() string {
	return e.ref
}

// By returns the ref of the entity that required the lookup, or "".
func (e *UnknownRefError) By() string {
	return e.by
}

// IsUnknownRef returns true if the error is an UnknownRefError.
func IsUnknownRef(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownRefError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownRef)
}

// CycleError reports a violation of the DAG invariant. Refs holds the refs
// involved: the nodes a topological sort could not order, in registration
// order, or the updated node and the dependency that would close a cycle.
type CycleError struct {
	refs []string
}

// NewCycleError returns a new CycleError over the unorderable refs.
func NewCycleError(refs []string) *CycleError {
	return &CycleError{refs: refs}
}

// Error returns the error string.
func (e *CycleError) Error() string {
	if len(e.refs) == 0 {
		return "sqlplan: dependency cycle detected"
	}
	return fmt.Sprintf("sqlplan: dependency cycle involving %s", strings.Join(e.refs, ", "))
}

// Is reports whether the target error matches CycleError.
func (e *CycleError) Is(err error) bool {
	return err == ErrCycle
}

// Refs returns the refs involved in the cycle.
func (e *CycleError) Refs() []string {
	return e.refs
}

// IsCycle returns true if the error is a CycleError.
func IsCycle(err error) bool {
	if err == nil {
		return false
	}
	var e *CycleError
	return errors.As(err, &e) || errors.Is(err, ErrCycle)
}

// ConstructionError reports invalid input to an entity constructor, such as
// a trigger with no timing flag.
type ConstructionError struct {
	kind   string
	name   string
	reason string
}

// NewConstructionError returns a new ConstructionError.
func NewConstructionError(kind, name, reason string) *ConstructionError {
	return &ConstructionError{kind: kind, name: name, reason: reason}
}

// Error returns the error string.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("sqlplan: cannot build %s %q: %s", e.kind, e.name, e.reason)
}

// Is reports whether the target error matches ConstructionError.
func (e *ConstructionError) Is(err error) bool {
	return err == ErrConstruction
}

// Kind returns the entity kind that failed to build.
func (e *ConstructionError) Kind() string {
	return e.kind
}

// Name returns the entity name that failed to build.
func (e *ConstructionError) Name() string {
	return e.name
}

// Reason returns the reason the construction was rejected.
func (e *ConstructionError) Reason() string {
	return e.reason
}

// IsConstruction returns true if the error is a ConstructionError.
func IsConstruction(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstructionError
	return errors.As(err, &e) || errors.Is(err, ErrConstruction)
}

// InvalidTaggedTextError reports unbalanced sentinel code points in a SQL
// fragment.
type InvalidTaggedTextError struct {
	text string
	pos  int
}

// NewInvalidTaggedTextError returns a new InvalidTaggedTextError for the
// fragment and the byte offset of the offending sentinel.
func NewInvalidTaggedTextError(text string, pos int) *InvalidTaggedTextError {
	return &InvalidTaggedTextError{text: text, pos: pos}
}

// Error returns the error string.
func (e *InvalidTaggedTextError) Error() string {
	return fmt.Sprintf("sqlplan: unbalanced sentinel at byte %d", e.pos)
}

// Is reports whether the target error matches InvalidTaggedTextError.
func (e *InvalidTaggedTextError) Is(err error) bool {
	return err == ErrInvalidTaggedText
}

// Text returns the offending fragment.
func (e *InvalidTaggedTextError) Text() string {
	return e.text
}

// Pos returns the byte offset of the offending sentinel.
func (e *InvalidTaggedTextError) Pos() int {
	return e.pos
}

// IsInvalidTaggedText returns true if the error is an InvalidTaggedTextError.
func IsInvalidTaggedText(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidTaggedTextError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidTaggedText)
}

// InvalidFormatError reports a request for a text rendering mode the syntax
// engine does not support.
type InvalidFormatError struct {
	mode int
}

// NewInvalidFormatError returns a new InvalidFormatError.
func NewInvalidFormatError(mode int) *InvalidFormatError {
	return &InvalidFormatError{mode: mode}
}

// Error returns the error string.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("sqlplan: unsupported format mode %d", e.mode)
}

// Is reports whether the target error matches InvalidFormatError.
func (e *InvalidFormatError) Is(err error) bool {
	return err == ErrInvalidFormat
}

// Mode returns the rejected mode value.
func (e *InvalidFormatError) Mode() int {
	return e.mode
}

// IsInvalidFormat returns true if the error is an InvalidFormatError.
func IsInvalidFormat(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidFormatError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidFormat)
}
