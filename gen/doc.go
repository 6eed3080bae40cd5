// Package gen turns a snapshot back into Go declaration code.
//
// The output is a single generated function replaying every captured entity
// through a builder.Manager, suitable for committing next to the code that
// owns the schema. It is the inverse of snapshot.Capture up to tagged text:
// serialised SQL is clean, so dependencies ride on explicit AfterRefs calls
// instead of being re-inferred.
package gen
