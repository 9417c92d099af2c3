package parsetree_test

import (
	"testing"

	"github.com/nrzimmer/aoc-lang/internal/parsetree"
	"github.com/stretchr/testify/assert"
)

func sample() *parsetree.Node {
	pos := parsetree.Position{Line: 1, Column: 1}
	name := parsetree.New(parsetree.Identifier, "main", pos)
	body := parsetree.New(parsetree.Block, "{}", pos)
	fn := parsetree.New(parsetree.Function, "func main() {}", pos, name, body)
	return parsetree.New(parsetree.Program, "func main() {}", pos, fn, parsetree.New(parsetree.EOI, "", pos))
}

func TestCursor(t *testing.T) {
	fn := sample().Child(0)
	c := fn.Inner()

	assert.Nil(t, c.Accept(parsetree.ReturnType))
	assert.Equal(t, "main", c.Accept(parsetree.Identifier).Text)
	assert.True(t, c.Peek().Is(parsetree.Block))
	assert.NotNil(t, c.Next())
	assert.Nil(t, c.Next())
	assert.Nil(t, c.Accept(parsetree.Block))
}

func TestChildOutOfRange(t *testing.T) {
	root := sample()
	assert.Nil(t, root.Child(-1))
	assert.Nil(t, root.Child(2))
	assert.True(t, root.Child(1).Is(parsetree.EOI))

	var missing *parsetree.Node
	assert.Nil(t, missing.Child(0))
	assert.False(t, missing.Is(parsetree.Program))
}

func TestDebugString(t *testing.T) {
	out := parsetree.DebugString(sample())
	assert.Equal(t, "program\n  function\n    identifier \"main\"\n    block \"{}\"\n  EOI \"\"\n", out)
	assert.Equal(t, "3:7", parsetree.Position{Line: 3, Column: 7}.String())
}
