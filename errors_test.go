package sqlplan_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlplan"
)

func TestErrorMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		sentinel error
		check    func(error) bool
	}{
		{
			name:     "duplicate_ref",
			err:      sqlplan.NewDuplicateRefError("Table:user"),
			sentinel: sqlplan.ErrDuplicateRef,
			check:    sqlplan.IsDuplicateRef,
		},
		{
			name:     "unknown_ref",
			err:      sqlplan.NewUnknownRefError("Table:ghost"),
			sentinel: sqlplan.ErrUnknownRef,
			check:    sqlplan.IsUnknownRef,
		},
		{
			name:     "cycle",
			err:      sqlplan.NewCycleError([]string{"a", "b"}),
			sentinel: sqlplan.ErrCycle,
			check:    sqlplan.IsCycle,
		},
		{
			name:     "construction",
			err:      sqlplan.NewConstructionError("Trigger", "trg", "no timing"),
			sentinel: sqlplan.ErrConstruction,
			check:    sqlplan.IsConstruction,
		},
		{
			name:     "invalid_tagged_text",
			err:      sqlplan.NewInvalidTaggedTextError("bad", 3),
			sentinel: sqlplan.ErrInvalidTaggedText,
			check:    sqlplan.IsInvalidTaggedText,
		},
		{
			name:     "invalid_format",
			err:      sqlplan.NewInvalidFormatError(9),
			sentinel: sqlplan.ErrInvalidFormat,
			check:    sqlplan.IsInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("other")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestErrorDetails(t *testing.T) {
	t.Parallel()

	dup := sqlplan.NewDuplicateRefError("Table:user")
	assert.Equal(t, "Table:user", dup.Ref())
	assert.Contains(t, dup.Error(), "Table:user")

	unknown := sqlplan.NewUnknownRefErrorBy("Table:ghost", "Index:idx")
	assert.Equal(t, "Table:ghost", unknown.Ref())
	assert.Equal(t, "Index:idx", unknown.By())
	assert.Contains(t, unknown.Error(), "Index:idx")

	cycle := sqlplan.NewCycleError([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, cycle.Refs())
	assert.Contains(t, cycle.Error(), "a, b")
	assert.Contains(t, sqlplan.NewCycleError(nil).Error(), "cycle")

	cons := sqlplan.NewConstructionError("Trigger", "trg", "no timing")
	assert.Equal(t, "Trigger", cons.Kind())
	assert.Equal(t, "trg", cons.Name())
	assert.Equal(t, "no timing", cons.Reason())

	tagged := sqlplan.NewInvalidTaggedTextError("bad text", 3)
	assert.Equal(t, "bad text", tagged.Text())
	assert.Equal(t, 3, tagged.Pos())

	format := sqlplan.NewInvalidFormatError(9)
	assert.Equal(t, 9, format.Mode())

	// Sentinels do not match each other.
	require.False(t, errors.Is(dup, sqlplan.ErrUnknownRef))
}
