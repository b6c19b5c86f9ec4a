package compiler

import "fmt"

// maxLabels is the fixed size of the label alphabet: A, B, …, Z, AA, …, ZZ.
const maxLabels = 702

// labelGen hands out fresh labels from the fixed 702-entry alphabetic
// sequence, generated algorithmically rather than hard-coded as a literal
// table (per spec.md's design notes — the original source embeds the
// sequence as a literal array; an implementation should generate it).
// Assignment is monotonic and never releases.
type labelGen struct {
	n int
}

func newLabelGen() *labelGen { return &labelGen{} }

// next returns the next unused label, or an error once the alphabet is
// exhausted (a program requiring more than 702 distinct labels fails to
// compile, per spec.md §6/§7).
func (g *labelGen) next() (string, error) {
	if g.n >= maxLabels {
		return "", fmt.Errorf("label alphabet exhausted: more than %d labels required", maxLabels)
	}
	label := labelAt(g.n)
	g.n++
	return label, nil
}

// labelAt returns the i'th label in the sequence A, B, …, Z, AA, AB, …, ZZ
// (0-indexed): single letters for i in [0,26), then two-letter pairs for i
// in [26,702).
func labelAt(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	i -= 26
	first := i / 26
	second := i % 26
	return string([]rune{rune('A' + first), rune('A' + second)})
}

// generateLabels materializes the full 702-entry sequence; used by tests
// to check the alphabet against spec.md's boundary cases.
func generateLabels() []string {
	out := make([]string, maxLabels)
	for i := range out {
		out[i] = labelAt(i)
	}
	return out
}
