package compiler

import (
	"strings"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// Diag is a compiler diagnostic. It is not a wrapped Go error chain — per
// SPEC_FULL.md's ambient-stack notes, diagnostics are rendered against
// source positions, which a generic error-wrapping library has no hook
// into — but it does satisfy the error interface so it composes with
// ordinary Go error handling at call sites that don't need the source
// rendering.
//
// Three shapes, grounded on original_source/src/util.rs's Error enum:
// Zero (no position), Single (one token), Many (several tokens, rendered
// one underlined line per token).
type Diag struct {
	Why string
	At  []lexer.Token // empty for Zero, one entry for Single, many for Many
}

func NewDiag(why string) *Diag { return &Diag{Why: why} }

func NewDiagAt(why string, at lexer.Token) *Diag {
	return &Diag{Why: why, At: []lexer.Token{at}}
}

func NewDiagAtMany(why string, ats []lexer.Token) *Diag {
	return &Diag{Why: why, At: ats}
}

func (d *Diag) Error() string { return d.Why }

// Readout renders the full diagnostic: each token's source line with a
// caret underline, followed by the message.
func (d *Diag) Readout(source string) string {
	if len(d.At) == 0 {
		return d.Why
	}
	var b strings.Builder
	for _, tok := range d.At {
		b.WriteString(tok.Underline(source))
		b.WriteByte('\n')
	}
	b.WriteString(d.Why)
	return b.String()
}
