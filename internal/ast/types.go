package ast

// ---------------------------------------------------------------------------
// Value types
// ---------------------------------------------------------------------------

// VarType is the type of a variable, parameter or return value.
type VarType int

const (
	Int VarType = iota
	Char
	String
	Bool
	Void
	VarArgs // trailing "..." of an extern signature; never a value type
)

func (t VarType) String() string {
	switch t {
	case Int:
		return "int"
	case Char:
		return "char"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Void:
		return "void"
	case VarArgs:
		return "..."
	default:
		return "unknown"
	}
}

// ParseVarType resolves a source type name ("int", "string", "...", …).
func ParseVarType(name string) (VarType, bool) {
	switch name {
	case "int":
		return Int, true
	case "char":
		return Char, true
	case "string":
		return String, true
	case "bool":
		return Bool, true
	case "void":
		return Void, true
	case "...":
		return VarArgs, true
	}
	return 0, false
}

// IsValue reports whether values of this type can be stored or passed.
func (t VarType) IsValue() bool {
	return t != Void && t != VarArgs
}

// ---------------------------------------------------------------------------
// Assignment operators
// ---------------------------------------------------------------------------

// AssignOp is the operator kind of an assignment statement.
type AssignOp int

const (
	OpAssign AssignOp = iota // =
	OpAdd                    // +=
	OpSub                    // -=
	OpMul                    // *=
	OpDiv                    // /=
	OpMod                    // %=
	OpAnd                    // &&=
	OpOr                     // ||=
)

func (o AssignOp) String() string {
	switch o {
	case OpAssign:
		return "="
	case OpAdd:
		return "+="
	case OpSub:
		return "-="
	case OpMul:
		return "*="
	case OpDiv:
		return "/="
	case OpMod:
		return "%="
	case OpAnd:
		return "&&="
	case OpOr:
		return "||="
	default:
		return "?="
	}
}

// IsArithmetic reports whether the operator performs arithmetic.
func (o AssignOp) IsArithmetic() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return true
	}
	return false
}

// IsLogic reports whether the operator performs a logical combination.
func (o AssignOp) IsLogic() bool {
	return o == OpAnd || o == OpOr
}
