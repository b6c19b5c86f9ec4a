package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// FuncDecl records a parsed function's signature and body.
type FuncDecl struct {
	Name       string
	ArgNames   []string
	ArgTypes   []Type
	ReturnType Type
	Body       SexprId
	CallSites  int // incremented once per resolved call to this function
}

// StructDecl records a parsed struct's field layout. Field order is the
// struct's storage layout order: field i sits at offset i within the
// struct's contiguous block in ⌊OBJ.
type StructDecl struct {
	Name        string
	FieldNames  []string
	FieldTypes  []Type
}

// FieldOffset returns field's declared index, or -1 if no such field.
func (s *StructDecl) FieldOffset(field string) int {
	for i, n := range s.FieldNames {
		if n == field {
			return i
		}
	}
	return -1
}

// BuiltIn is one entry of the built-in operator catalog (loaded from the
// embedded builtins.txt — see builtins.go). HandleTemplate and
// CodeTemplate use {N} placeholders substituted via vecFmt at emission
// time.
type BuiltIn struct {
	Name           string
	ArgTypes       []Type
	ReturnType     Type
	HandleTemplate string
	CodeTemplate string
}

// Manager is the single arena shared across every pipeline stage: AST
// nodes, scopes, declared functions/structs, the built-in catalog, the
// source buffer, and the label generator. Every cross-reference inside the
// IR is a SexprId/ScopeId/FuncDeclId/StructDeclId index into one of this
// struct's slices — nothing holds a direct pointer to another node.
type Manager struct {
	Source string

	Nodes   []Sexpr
	Scopes  []Scope
	Funcs   []FuncDecl
	Structs []StructDecl
	Builtins []BuiltIn

	TopLevel []SexprId

	labels *labelGen

	log *zap.SugaredLogger
}

// NewManager constructs an empty arena over source. log may be nil, in
// which case a no-op logger is used so library callers (and tests) never
// need to configure one.
func NewManager(source string, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Manager{
		Source: source,
		labels: newLabelGen(),
		log:    log,
	}
	m.Scopes = append(m.Scopes, newScope(NoScope, false)) // scope 0: global
	return m
}

func (m *Manager) GlobalScope() ScopeId { return 0 }

// NewNode appends a node to the arena and returns its id. Scope is left at
// NoScope and Type at the zero Type (TString's zero value happens to be
// TypeKind 0, so callers that rely on "not yet set" semantics check the
// owning stage's own bookkeeping rather than the zero Type — scope building
// and type checking each visit every node exactly once, per pipeline
// ordering).
func (m *Manager) NewNode(kind Kind, tok lexer.Token, data any) SexprId {
	id := SexprId(len(m.Nodes))
	m.Nodes = append(m.Nodes, Sexpr{Kind: kind, Tok: tok, Scope: NoScope, Data: data})
	return id
}

func (m *Manager) Node(id SexprId) *Sexpr { return &m.Nodes[id] }

// NewScope appends a scope as a child of parent (parent may be NoScope for
// roots such as a function body) and returns its id.
func (m *Manager) NewScope(parent ScopeId, isFuncBoundary bool) ScopeId {
	id := ScopeId(len(m.Scopes))
	m.Scopes = append(m.Scopes, newScope(parent, isFuncBoundary))
	if parent != NoScope {
		m.Scopes[parent].Children = append(m.Scopes[parent].Children, id)
	}
	return id
}

func (m *Manager) Scope(id ScopeId) *Scope { return &m.Scopes[id] }

func (m *Manager) RegisterFunc(decl FuncDecl) FuncDeclId {
	id := FuncDeclId(len(m.Funcs))
	m.Funcs = append(m.Funcs, decl)
	return id
}

func (m *Manager) Func(id FuncDeclId) *FuncDecl { return &m.Funcs[id] }

func (m *Manager) RegisterStruct(decl StructDecl) StructDeclId {
	id := StructDeclId(len(m.Structs))
	m.Structs = append(m.Structs, decl)
	return id
}

func (m *Manager) Struct(id StructDeclId) *StructDecl { return &m.Structs[id] }

// LookupStructByName returns the most recently registered struct with the
// given name. Unlike resolveFunc and resolveStructInit, it does not reject
// duplicate names.
func (m *Manager) LookupStructByName(name string) (StructDeclId, bool) {
	for i := len(m.Structs) - 1; i >= 0; i-- {
		if m.Structs[i].Name == name {
			return StructDeclId(i), true
		}
	}
	return 0, false
}

func (m *Manager) NextLabel() (string, error) { return m.labels.next() }

func (m *Manager) Log() *zap.SugaredLogger { return m.log }

// --- dispatch resolution (type checker & dispatch, §4.4) ---

func typesEqualSig(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// resolveFunc returns the id of the unique declared function matching name
// and argTypes, or ok=false if there is no match. Multiple matches panic —
// per spec this is a deliberate compiler bug surface, noted as a
// production-hardening item rather than fixed here (see spec.md §4.4).
func (m *Manager) resolveFunc(name string, argTypes []Type) (FuncDeclId, bool) {
	match := -1
	for i, f := range m.Funcs {
		if f.Name != name || !typesEqualSig(f.ArgTypes, argTypes) {
			continue
		}
		if match != -1 {
			panic(fmt.Sprintf("ambiguous function call: multiple declarations of %q matching signature %v", name, argTypes))
		}
		match = i
	}
	if match == -1 {
		return 0, false
	}
	return FuncDeclId(match), true
}

// resolveStructInit returns the id of the unique struct whose field types
// match argTypes positionally, for a constructor call spelled as the
// struct's own name.
func (m *Manager) resolveStructInit(name string, argTypes []Type) (StructDeclId, bool) {
	match := -1
	for i, s := range m.Structs {
		if s.Name != name || !typesEqualSig(s.FieldTypes, argTypes) {
			continue
		}
		if match != -1 {
			panic(fmt.Sprintf("ambiguous struct constructor: multiple declarations of %q matching signature %v", name, argTypes))
		}
		match = i
	}
	if match == -1 {
		return 0, false
	}
	return StructDeclId(match), true
}

// resolveBuiltin returns the id of the unique built-in matching name and
// argTypes. Grounded on original_source's lang_consts.rs::get_id.
func (m *Manager) resolveBuiltin(name string, argTypes []Type) (int, bool) {
	match := -1
	for i, b := range m.Builtins {
		if b.Name != name || !typesEqualSig(b.ArgTypes, argTypes) {
			continue
		}
		if match != -1 {
			panic(fmt.Sprintf("ambiguous builtin: multiple entries for %q matching signature %v", name, argTypes))
		}
		match = i
	}
	if match == -1 {
		return 0, false
	}
	return match, true
}
