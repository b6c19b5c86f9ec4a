package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sxc/pkg/lexer"
)

func parseAndInit(t *testing.T, src string) *Manager {
	t.Helper()
	m := parse(t, src)
	require.NoError(t, initializeTypeInfo(m))
	return m
}

func TestInitializeTypeInfoResolvesPrimitives(t *testing.T) {
	m := parseAndInit(t, `(func add a:int b:int -> int (add a b))`)
	fd := m.Funcs[0]
	require.True(t, fd.ArgTypes[0].Equal(IntType()))
	require.True(t, fd.ArgTypes[1].Equal(IntType()))
	require.True(t, fd.ReturnType.Equal(IntType()))
}

func TestInitializeTypeInfoResolvesStructNames(t *testing.T) {
	m := parseAndInit(t, `(struct P x:int y:int) (struct Box inner:P)`)
	box := m.Structs[1]
	require.Equal(t, TCustom, box.FieldTypes[0].Kind)
	require.Equal(t, StructDeclId(0), box.FieldTypes[0].StructID)
}

func TestInitializeTypeInfoUnknownTypeNameFails(t *testing.T) {
	src := `(func f a:bogus -> void 3)`
	m := NewManager(src, nil)
	require.NoError(t, Parse(m, lexer.Tokenize(src)))
	err := initializeTypeInfo(m)
	require.Error(t, err)
}
