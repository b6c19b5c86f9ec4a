// Package compiler implements the sxc pipeline: parsing s-expressions into
// an arena-backed AST, resolving scopes and types, allocating TI-84 Plus
// BASIC backend storage, and emitting target source text.
//
// The pipeline is strictly staged (see Compile in compiler.go) and all
// cross-stage state lives in a single *Manager, per the arena-of-indices
// design described throughout this package: nodes and scopes never hold
// direct references to each other, only SexprId/ScopeId indices into the
// Manager's slices. This lets a node's Kind be mutated in place exactly
// once — the Other → {FuncCall, StructInit, BuiltIn} late-binding step in
// typecheck.go — without fighting Go's aliasing rules.
package compiler

import "github.com/ha1tch/sxc/pkg/lexer"

// SexprId is an opaque index into Manager.Nodes.
type SexprId int

// ScopeId is an opaque index into Manager.Scopes.
type ScopeId int

// NoScope is the sentinel for "not yet assigned", and the Parent of a root
// scope. It is not the zero ScopeId: scope 0 is the global scope.
const NoScope ScopeId = -1

// FuncDeclId indexes Manager.Funcs.
type FuncDeclId int

// StructDeclId indexes Manager.Structs.
type StructDeclId int

// Kind discriminates a Sexpr's payload. Other starts as KindOther and is
// mutated in place into exactly one of KindFuncCall, KindStructInit, or
// KindBuiltIn during type checking (see resolveOther in typecheck.go).
type Kind int

const (
	KindStringLiteral Kind = iota
	KindIntegerLiteral
	KindRealLiteral
	KindBooleLiteral
	KindIdentifier
	KindDeclare
	KindAssign
	KindIfSwitch
	KindWhileLoop
	KindBlock
	KindList
	KindListGet
	KindListSet
	KindFuncDef
	KindStructDef
	KindOther
	KindFuncCall
	KindStructInit
	KindBuiltIn
	KindStructGet
	KindStructSet
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindStringLiteral:
		return "StringLiteral"
	case KindIntegerLiteral:
		return "IntegerLiteral"
	case KindRealLiteral:
		return "RealLiteral"
	case KindBooleLiteral:
		return "BooleLiteral"
	case KindIdentifier:
		return "Identifier"
	case KindDeclare:
		return "Declare"
	case KindAssign:
		return "Assign"
	case KindIfSwitch:
		return "IfSwitch"
	case KindWhileLoop:
		return "WhileLoop"
	case KindBlock:
		return "Block"
	case KindList:
		return "List"
	case KindListGet:
		return "ListGet"
	case KindListSet:
		return "ListSet"
	case KindFuncDef:
		return "FuncDef"
	case KindStructDef:
		return "StructDef"
	case KindOther:
		return "Other"
	case KindFuncCall:
		return "FuncCall"
	case KindStructInit:
		return "StructInit"
	case KindBuiltIn:
		return "BuiltIn"
	case KindStructGet:
		return "StructGet"
	case KindStructSet:
		return "StructSet"
	case KindFormat:
		return "Format"
	default:
		return "?"
	}
}

// Sexpr is one AST node. Data holds a kind-specific payload struct (see
// below); Scope (NoScope until then) and Type are filled by later stages,
// which visit every node once; the zero Type is String, so it does not
// mark "not yet set".
// Repr holds the node's own backend handle for anonymous intermediates —
// named variables instead carry their repr on the owning Scope. Aux is a
// second, node-owned handle used only by Format: the shared scratch
// register for digit extraction and list-index loops during nested
// stringification (§4.7).
type Sexpr struct {
	Kind  Kind
	Tok   lexer.Token
	Scope ScopeId
	Type  Type
	Repr  ValRepr
	Aux   ValRepr
	Data  any
}

// --- Kind-specific payloads ---

type StringLiteralData struct{ Value string }
type IntegerLiteralData struct{ Value int64 }
type RealLiteralData struct{ Value float64 }
type BooleLiteralData struct{ Value bool }
type IdentifierData struct{ Name string }

type DeclareData struct {
	Name      string
	Init      SexprId
	Body      SexprId
	BodyScope ScopeId
}

type AssignData struct {
	Name string
	Expr SexprId
}

type IfSwitchData struct {
	Pred, Then, Else SexprId
}

type WhileLoopData struct {
	Pred, Body SexprId
}

type BlockData struct {
	Stmts []SexprId
}

type ListData struct {
	Elements []SexprId
}

type ListGetData struct {
	List, Index SexprId
}

type ListSetData struct {
	List, Index, Elem SexprId
}

type FuncDefData struct {
	FuncID FuncDeclId
}

type StructDefData struct {
	StructID StructDeclId
}

// OtherData is the parse-time placeholder for any application whose head
// is not a reserved keyword. Exactly one of FuncCallData, StructInitData,
// or BuiltInData replaces it (by mutating the owning Sexpr's Kind and
// Data) during type checking.
type OtherData struct {
	Name string
	Args []SexprId
}

type FuncCallData struct {
	FuncID FuncDeclId
	CallID int
	Args   []SexprId
}

type StructInitData struct {
	StructID StructDeclId
	Args     []SexprId
}

type BuiltInData struct {
	BuiltinID int
	Args      []SexprId
}

type StructGetData struct {
	StructID StructDeclId
	Expr     SexprId
	Field    string
}

type StructSetData struct {
	StructID StructDeclId
	Expr     SexprId
	Field    string
	Value    SexprId
}

type FormatData struct {
	Exprs []SexprId
}
