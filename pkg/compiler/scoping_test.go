package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sxc/pkg/lexer"
)

func parseInitScope(t *testing.T, src string) *Manager {
	t.Helper()
	m := parseAndInit(t, src)
	require.NoError(t, createAllScopes(m))
	return m
}

func TestCreateAllScopesBindsDeclaredName(t *testing.T) {
	m := parseInitScope(t, `(declare x 3 x)`)
	d := m.Node(m.TopLevel[0]).Data.(DeclareData)
	scopeID, idx, ok := resolveVariable(m, d.BodyScope, "x")
	require.True(t, ok)
	require.Equal(t, "x", m.Scope(scopeID).VarNames[idx])
}

func TestCreateAllScopesRejectsUndeclaredIdentifier(t *testing.T) {
	src := `y`
	m := NewManager(src, nil)
	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	require.NoError(t, initializeTypeInfo(m))
	err := createAllScopes(m)
	require.Error(t, err)
}

func TestCreateAllScopesRejectsAssignToUndeclared(t *testing.T) {
	src := `(assign y 3)`
	m := NewManager(src, nil)
	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	require.NoError(t, initializeTypeInfo(m))
	err := createAllScopes(m)
	require.Error(t, err)
}

func TestFuncBodyScopeIsIsolatedRoot(t *testing.T) {
	m := parseInitScope(t, `(func add a:int b:int -> int (add a b))`)
	fd := m.Funcs[0]
	fnScope := m.Node(fd.Body).Scope
	require.Equal(t, NoScope, m.Scope(fnScope).Parent)

	_, _, ok := resolveVariable(m, fnScope, "a")
	require.True(t, ok)
}

func TestResolveVariableStopsAtFunctionBoundary(t *testing.T) {
	// A function body scope has Parent == NoScope, so a name bound only in
	// the enclosing top-level scope must be unreachable from inside it —
	// createAllScopes surfaces this as an undeclared-variable error.
	src := `(declare outer 1 (func f -> int outer))`
	m := NewManager(src, nil)
	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	require.NoError(t, initializeTypeInfo(m))
	err := createAllScopes(m)
	require.Error(t, err)
}
