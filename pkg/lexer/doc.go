// Package lexer tokenises sxc source text.
//
// Tokens are position-only views into the source buffer: a Token records
// where a run of text begins and how long it is, and nothing else.
// Whitespace, double quotes, the brackets (){}[] and ':' are the only
// characters the lexer treats specially; everything else is opaque to it
// and left for the parser to interpret.
//
//	toks := lexer.Tokenize(source)
//	for _, tok := range toks {
//	    fmt.Println(tok.Text(source))
//	}
package lexer
