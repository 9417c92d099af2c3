package diag

import (
	"fmt"
	"testing"

	"github.com/nrzimmer/aoc-lang/internal/parsetree"
	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := Errorf(parsetree.Position{Line: 3, Column: 7}, "unknown variable: %s", "x")
	assert.Equal(t, "line 3, col 7: error: unknown variable: x", err.Error())

	err = Internalf(parsetree.Position{}, "no main function")
	assert.Equal(t, "internal error: no main function", err.Error())
}

func TestKindSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("codegen: %w", Unsupportedf(parsetree.Position{}, "return"))
	assert.True(t, IsUnsupported(wrapped))
	assert.False(t, IsInternal(wrapped))
	assert.False(t, IsSemantic(wrapped))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, Unsupported, kind)

	_, ok = KindOf(fmt.Errorf("plain"))
	assert.False(t, ok)
}
