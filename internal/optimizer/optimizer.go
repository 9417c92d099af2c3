// Package optimizer removes functions that do nothing.
package optimizer

import "github.com/nrzimmer/aoc-lang/internal/ast"

// EliminateEmptyFunctions drops every function whose body has no statements,
// together with its scope tree, and strips calls to the dropped functions
// from the remaining bodies. main is not exempt; code generation reports a
// missing main afterwards. It returns the removed names in sorted order.
func EliminateEmptyFunctions(prog *ast.Program) []string {
	var removed []string
	for _, name := range prog.FunctionNames() {
		if len(prog.Functions[name].Body.Statements) == 0 {
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		return nil
	}

	gone := make(map[string]bool, len(removed))
	for _, name := range removed {
		prog.RemoveFunction(name)
		gone[name] = true
	}
	for _, fn := range prog.Functions {
		stripCalls(fn.Body, gone)
	}
	return removed
}

// stripCalls removes calls to the named functions, descending into nested
// blocks. A body emptied this way stays; the pass is not repeated.
func stripCalls(block *ast.Block, gone map[string]bool) {
	kept := block.Statements[:0]
	for _, s := range block.Statements {
		switch s := s.(type) {
		case *ast.FunctionCall:
			if gone[s.Name] {
				continue
			}
		case *ast.Block:
			stripCalls(s, gone)
		}
		kept = append(kept, s)
	}
	block.Statements = kept
}
