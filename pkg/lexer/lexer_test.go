package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sxc/pkg/lexer"
)

func TestTokenizeEmpty(t *testing.T) {
	require.Empty(t, lexer.Tokenize(""))
}

func TestTokenizeSingleAtom(t *testing.T) {
	toks := lexer.Tokenize("x")
	require.Len(t, toks, 1)
	require.Equal(t, "x", toks[0].Text("x"))
}

func TestTokenizeParens(t *testing.T) {
	src := "(declare x 3)"
	toks := lexer.Tokenize(src)
	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text(src))
	}
	require.Equal(t, []string{"(", "declare", "x", "3", ")"}, texts)
}

func TestTokenizeStringLiteral(t *testing.T) {
	src := `(print "hello world")`
	toks := lexer.Tokenize(src)
	require.Equal(t, `"hello world"`, toks[2].Text(src))
}

func TestTokenizeUnterminatedString(t *testing.T) {
	src := `(print "oops`
	toks := lexer.Tokenize(src)
	last := toks[len(toks)-1]
	require.Equal(t, `"oops`, last.Text(src))
}

func TestTokenizeAdjacentBrackets(t *testing.T) {
	src := "(a(b)c)"
	toks := lexer.Tokenize(src)
	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text(src))
	}
	require.Equal(t, []string{"(", "a", "(", "b", ")", "c", ")"}, texts)
}

func TestUnderline(t *testing.T) {
	src := "line one\n(bad token)\nline three"
	toks := lexer.Tokenize(src)
	// "bad" is the second token on the second line
	tok := toks[3]
	require.Equal(t, "bad", tok.Text(src))
	underlined := tok.Underline(src)
	require.Contains(t, underlined, "(bad token)")
	require.Contains(t, underlined, "^^^")
}
