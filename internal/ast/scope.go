package ast

import "sort"

// SlotSize is the size in bytes of one variable's stack slot.
const SlotSize = 8

// NoParent marks a root scope.
const NoParent = -1

// Variable is a named local with a stack slot assigned by code generation.
type Variable struct {
	Name string
	Type VarType

	offset int
	placed bool
}

// Offset returns the variable's byte offset from the frame base, and false
// if no offset has been assigned yet.
func (v *Variable) Offset() (int, bool) {
	return v.offset, v.placed
}

// ScopeNode is one lexical scope: its own variables plus nested child
// scopes keyed by id. Parents are referenced by id, never by pointer.
type ScopeNode struct {
	ID        int
	Parent    int // NoParent for a function's root scope
	Variables []*Variable
	Children  map[int]*ScopeNode

	// FrameSize is the total local storage computed by AssignOffsets.
	FrameSize int
}

// NewScope creates an empty scope.
func NewScope(id, parent int) *ScopeNode {
	return &ScopeNode{ID: id, Parent: parent, Children: make(map[int]*ScopeNode)}
}

// Declare appends a variable with no offset. Duplicate names are allowed;
// Lookup returns the first one.
func (s *ScopeNode) Declare(name string, t VarType) *Variable {
	v := &Variable{Name: name, Type: t}
	s.Variables = append(s.Variables, v)
	return v
}

// Lookup returns the first variable in this scope named name, or nil.
// Enclosing scopes are not searched.
func (s *ScopeNode) Lookup(name string) *Variable {
	for _, v := range s.Variables {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// AddChild creates and registers a nested scope.
func (s *ScopeNode) AddChild(id int) *ScopeNode {
	child := NewScope(id, s.ID)
	s.Children[id] = child
	return child
}

// Find returns the scope with the given id in this subtree, or nil.
func (s *ScopeNode) Find(id int) *ScopeNode {
	if s == nil {
		return nil
	}
	if s.ID == id {
		return s
	}
	for _, c := range s.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// AssignOffsets places this scope's variables in consecutive slots starting
// at start, then recurses into children (in id order) continuing past the
// parent's slots. It returns the offset after the last slot, which is the
// frame size needed by the subtree. An already-placed variable keeps its
// offset.
func (s *ScopeNode) AssignOffsets(start int) int {
	next := start
	for _, v := range s.Variables {
		if !v.placed {
			v.offset = next
			v.placed = true
		}
		next += SlotSize
	}
	for _, id := range s.childIDs() {
		next = s.Children[id].AssignOffsets(next)
	}
	return next
}

func (s *ScopeNode) childIDs() []int {
	ids := make([]int, 0, len(s.Children))
	for id := range s.Children {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CountVariables returns the number of variables in this subtree.
func (s *ScopeNode) CountVariables() int {
	n := len(s.Variables)
	for _, c := range s.Children {
		n += c.CountVariables()
	}
	return n
}
