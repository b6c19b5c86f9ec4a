package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinsParsesEmbeddedCatalog(t *testing.T) {
	builtins, err := loadBuiltins(builtinsSource)
	require.NoError(t, err)
	require.NotEmpty(t, builtins)

	var foundAdd, foundPrint bool
	for _, b := range builtins {
		if b.Name == "add" && len(b.ArgTypes) == 2 && b.ArgTypes[0].Equal(IntType()) {
			foundAdd = true
			require.Equal(t, "({0}+{1})", b.HandleTemplate)
			require.Empty(t, b.CodeTemplate)
			require.True(t, b.ReturnType.Equal(IntType()))
		}
		if b.Name == "print" && len(b.ArgTypes) == 1 && b.ArgTypes[0].Equal(StringType()) {
			foundPrint = true
			require.Equal(t, "Disp {0}\n", b.CodeTemplate)
			require.True(t, b.ReturnType.Equal(VoidType()))
		}
	}
	require.True(t, foundAdd, "expected an add(Int,Int) entry")
	require.True(t, foundPrint, "expected a print(String) entry")
}

func TestLoadBuiltinsRejectsUnknownKey(t *testing.T) {
	_, err := loadBuiltins("name: foo\nargs:\nret: Void\nbogus: 1\n")
	require.Error(t, err)
}

func TestLoadBuiltinsRejectsIncompleteEntry(t *testing.T) {
	_, err := loadBuiltins("name: foo\n")
	require.Error(t, err)
}

func TestParseTypeListEmpty(t *testing.T) {
	require.Empty(t, parseTypeList(""))
}

func TestParseTypeListMultiple(t *testing.T) {
	types := parseTypeList("Int, Real, Boole")
	require.Len(t, types, 3)
	require.True(t, types[0].Equal(IntType()))
	require.True(t, types[1].Equal(RealType()))
	require.True(t, types[2].Equal(BooleType()))
}
