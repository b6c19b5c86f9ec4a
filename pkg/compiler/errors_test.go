package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sxc/pkg/lexer"
)

func TestDiagZeroReadoutIsBareMessage(t *testing.T) {
	d := NewDiag("no such thing")
	require.Equal(t, "no such thing", d.Error())
	require.Equal(t, "no such thing", d.Readout("whatever source"))
}

func TestDiagSingleReadoutUnderlinesToken(t *testing.T) {
	src := "(add 1 x)"
	toks := lexer.Tokenize(src)
	// toks: ( add 1 x )
	tok := toks[3] // "x"
	d := NewDiagAt("undeclared variable", tok)

	out := d.Readout(src)
	require.Contains(t, out, src)
	require.Contains(t, out, "undeclared variable")
	require.Contains(t, out, "^")
}

func TestDiagManyReadoutUnderlinesEveryToken(t *testing.T) {
	src := "a b"
	toks := lexer.Tokenize(src)
	d := NewDiagAtMany("conflicting types", toks)

	out := d.Readout(src)
	// One underlined line per token, both sharing the same source line.
	require.Equal(t, 2, strings.Count(out, "a b"))
	require.Contains(t, out, "conflicting types")
}
