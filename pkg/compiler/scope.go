package compiler

// Scope is one node in the lexical scope tree. Variable indices are stable
// once assigned; lookup walks toward the root. Named variables carry their
// backend handle here (Reprs), not on the Sexpr that declared them — per
// the data model's "bound vs free representations" rule.
type Scope struct {
	Parent   ScopeId
	Children []ScopeId

	names     map[string]int
	VarNames  []string
	VarTypes  []*Type // nil until the Declare's init expression is type-checked
	Reprs     []ValRepr

	Funcs   []FuncDeclId
	Structs []StructDeclId

	// UnboundCount is the number of anonymous intermediates (IfSwitch
	// result registers, List backing variables, Format accumulators, …)
	// whose owning node's Scope is this one. Combined with len(VarNames)
	// it gives this scope's contribution to scopeTotalVars, which sizes
	// a function's call frame (see allocate.go, emit.go).
	UnboundCount int

	// IsFuncBoundary marks a function-body root scope: lookups for
	// variables never cross this boundary upward (function scopes are
	// roots per the newer dialect's invariant), though func/struct ids
	// still resolve via the enclosing declaration scope since those are
	// looked up through the Manager's own tables, not scope lookup.
	IsFuncBoundary bool
}

func newScope(parent ScopeId, isFuncBoundary bool) Scope {
	return Scope{
		Parent:         parent,
		names:          make(map[string]int),
		IsFuncBoundary: isFuncBoundary,
	}
}

// declareVar binds name as a new local in this scope and returns its
// stable index. Re-declaring the same name in the same scope is not
// permitted by the source language (the parser never attempts it: each
// Declare creates a fresh child scope for exactly one name).
func (s *Scope) declareVar(name string) int {
	idx := len(s.VarNames)
	s.VarNames = append(s.VarNames, name)
	s.VarTypes = append(s.VarTypes, nil)
	s.Reprs = append(s.Reprs, ValRepr{})
	s.names[name] = idx
	return idx
}

func (s *Scope) localIndex(name string) (int, bool) {
	idx, ok := s.names[name]
	return idx, ok
}
