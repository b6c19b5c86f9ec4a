package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sxc/pkg/lexer"
)

func fullyChecked(t *testing.T, src string) *Manager {
	t.Helper()
	m := NewManager(src, nil)
	builtins, err := loadBuiltins(builtinsSource)
	require.NoError(t, err)
	m.Builtins = builtins

	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	require.NoError(t, initializeTypeInfo(m))
	require.NoError(t, createAllScopes(m))
	require.NoError(t, typeCheckAll(m))
	return m
}

func checkFails(t *testing.T, src string) error {
	t.Helper()
	m := NewManager(src, nil)
	builtins, err := loadBuiltins(builtinsSource)
	require.NoError(t, err)
	m.Builtins = builtins

	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	require.NoError(t, initializeTypeInfo(m))
	require.NoError(t, createAllScopes(m))
	return typeCheckAll(m)
}

func TestTypeCheckDeclareAndPrint(t *testing.T) {
	m := fullyChecked(t, `(declare x 3 (print x))`)
	require.True(t, m.Node(m.TopLevel[0]).Type.Equal(VoidType()))
}

func TestTypeCheckResolvesOtherToBuiltin(t *testing.T) {
	m := fullyChecked(t, `(add 1 2)`)
	n := m.Node(m.TopLevel[0])
	require.Equal(t, KindBuiltIn, n.Kind)
	require.True(t, n.Type.Equal(IntType()))
}

func TestTypeCheckResolvesOtherToFuncCall(t *testing.T) {
	m := fullyChecked(t, `(func add a:int b:int -> int (add a b)) (add 2 3)`)
	call := m.Node(m.TopLevel[1])
	require.Equal(t, KindFuncCall, call.Kind)
	require.True(t, call.Type.Equal(IntType()))
	// The body's own (add a b) also resolves to the user function (user
	// functions win over built-ins) and, being checked first, takes call id
	// 0; the top-level call is the second call site.
	require.Equal(t, 1, call.Data.(FuncCallData).CallID)
}

func TestTypeCheckAssignsDenseCallIDs(t *testing.T) {
	m := fullyChecked(t, `(func id a:int -> int a) (id 1) (id 2) (id 3)`)
	for i, id := range []int{0, 1, 2} {
		call := m.Node(m.TopLevel[i+1]).Data.(FuncCallData)
		require.Equal(t, id, call.CallID)
	}
	require.Equal(t, 3, m.Funcs[0].CallSites)
}

func TestTypeCheckResolvesOtherToStructInit(t *testing.T) {
	m := fullyChecked(t, `(struct P x:int y:int) (P 1 2)`)
	n := m.Node(m.TopLevel[1])
	require.Equal(t, KindStructInit, n.Kind)
	require.Equal(t, "P", n.Type.Name)
}

func TestTypeCheckStructGetField(t *testing.T) {
	m := fullyChecked(t, `(struct P x:int y:string) (declare p (P 1 "hi") (get-field p y))`)
	d := m.Node(m.TopLevel[1]).Data.(DeclareData)
	body := m.Node(d.Body).Data.(BlockData).Stmts[0]
	require.True(t, m.Node(body).Type.Equal(StringType()))
}

func TestTypeCheckIfRequiresBooleCondition(t *testing.T) {
	require.Error(t, checkFails(t, `(if 1 2 3)`))
}

func TestTypeCheckIfBranchesMustMatch(t *testing.T) {
	require.Error(t, checkFails(t, `(if true 1 "x")`))
}

func TestTypeCheckAssignTypeMismatch(t *testing.T) {
	require.Error(t, checkFails(t, `(declare x 3 (assign x "oops"))`))
}

func TestTypeCheckEmptyListLiteralFails(t *testing.T) {
	require.Error(t, checkFails(t, `(list)`))
}

func TestTypeCheckListElementsMustShareType(t *testing.T) {
	require.Error(t, checkFails(t, `(list 1 "two")`))
}

func TestTypeCheckListOfVoidFails(t *testing.T) {
	require.Error(t, checkFails(t, `(func noop a:int -> void (print a)) (list (noop 1) (noop 1))`))
}

func TestTypeCheckNoMatchingOperationFails(t *testing.T) {
	require.Error(t, checkFails(t, `(nonexistent-op 1 2)`))
}

func TestTypeCheckFuncReturnTypeMismatchFails(t *testing.T) {
	require.Error(t, checkFails(t, `(func bad a:int -> string a)`))
}

func TestTypeCheckFormatReturnsString(t *testing.T) {
	m := fullyChecked(t, `(declare x 3 (format "x=" x))`)
	d := m.Node(m.TopLevel[0]).Data.(DeclareData)
	body := m.Node(d.Body).Data.(BlockData).Stmts[0]
	require.True(t, m.Node(body).Type.Equal(StringType()))
}
