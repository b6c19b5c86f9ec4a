package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func fullyAllocated(t *testing.T, src string) *Manager {
	t.Helper()
	m := fullyChecked(t, src)
	require.NoError(t, allocateVariables(m))
	return m
}

func TestAllocateSimpleDeclareGetsFirstScalar(t *testing.T) {
	m := fullyAllocated(t, `(declare x 3 (print x))`)
	d := m.Node(m.TopLevel[0]).Data.(DeclareData)
	idx, _ := m.Scope(d.BodyScope).localIndex("x")
	require.Equal(t, SimpleRepr("A"), m.Scope(d.BodyScope).Reprs[idx])
}

func TestAllocateStringDeclareGetsFirstStringSlot(t *testing.T) {
	m := fullyAllocated(t, `(declare s "hi" (print s))`)
	d := m.Node(m.TopLevel[0]).Data.(DeclareData)
	idx, _ := m.Scope(d.BodyScope).localIndex("s")
	require.Equal(t, SimpleRepr("Str1"), m.Scope(d.BodyScope).Reprs[idx])
}

func TestAllocatePreOrderParentOutranksChild(t *testing.T) {
	// The outer if must mint its result register before descending into the
	// nested if in its Then arm (spec.md §4.5's pre-order rule), so the
	// outer if gets "A" and the inner if gets "B".
	m := fullyAllocated(t, `(if true (if false 1 2) 3)`)
	outer := m.Node(m.TopLevel[0])
	inner := m.Node(outer.Data.(IfSwitchData).Then)
	require.Equal(t, "A", outer.Repr.Tag)
	require.Equal(t, "B", inner.Repr.Tag)
}

func TestAllocateStructInitAliasesDeclaredVariable(t *testing.T) {
	m := fullyAllocated(t, `(struct P x:int y:int) (declare p (P 1 2) (get-field p y))`)
	declare := m.Node(m.TopLevel[1])
	d := declare.Data.(DeclareData)
	initNode := m.Node(d.Init)
	idx, _ := m.Scope(d.BodyScope).localIndex("p")
	boundRepr := m.Scope(d.BodyScope).Reprs[idx]

	require.Equal(t, initNode.Repr, boundRepr, "declared variable must alias the struct init's own register")
	require.Equal(t, "A", boundRepr.Tag)
}

func TestAllocateFormatOwnsTwoScratchScalars(t *testing.T) {
	m := fullyAllocated(t, `(declare x 3 (format "x=" x))`)
	d := m.Node(m.TopLevel[0]).Data.(DeclareData)
	format := m.Node(m.Node(d.Body).Data.(BlockData).Stmts[0])
	require.Equal(t, ReprIndexString, format.Repr.Kind)
	require.Equal(t, ReprSimple, format.Aux.Kind)
	require.NotEqual(t, format.Repr.Tag, format.Aux.Tag)
}

func TestAllocateScalarOverflowOnThe28th(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 28; i++ {
		b.WriteString("(if true 1 2) ")
	}
	m := fullyChecked(t, b.String())
	err := allocateVariables(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "27")
}

func TestAllocateScalarSucceedsAt27(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 27; i++ {
		b.WriteString("(if true 1 2) ")
	}
	m := fullyChecked(t, b.String())
	require.NoError(t, allocateVariables(m))
}

func TestAllocateStringOverflowOnThe10th(t *testing.T) {
	// Nest ten string declares so each is actually reachable; only nine
	// Str slots (Str1..Str9) exist, so the innermost one must overflow.
	src := ""
	for i := 9; i >= 0; i-- {
		name := "s" + string(rune('a'+i))
		if src == "" {
			src = `(print ` + name + `)`
		}
		src = `(declare ` + name + ` "x" ` + src + `)`
	}
	m := fullyChecked(t, src)
	err := allocateVariables(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "9")
}

func TestScopeTotalVarsCountsFunctionFrame(t *testing.T) {
	// A trivial two-argument body with no further anonymous intermediates:
	// the frame size is exactly the parameter count.
	m := fullyAllocated(t, `(func first a:int b:int -> int a)`)
	fd := m.Funcs[0]
	fnScope := m.Node(fd.Body).Scope
	require.Equal(t, 2, scopeTotalVars(m, fnScope))
}

func TestScopeTotalVarsCountsNestedAnonymousIntermediate(t *testing.T) {
	// The body's if-result register is an unbound intermediate owned by
	// the body's own block scope — here that scope IS the function scope,
	// since while/if/block don't open their own child scopes (only declare
	// and func bodies do), so it adds to the function frame's total.
	m := fullyAllocated(t, `(func pick a:int b:int -> int (if true a b))`)
	fd := m.Funcs[0]
	fnScope := m.Node(fd.Body).Scope
	require.Equal(t, 3, scopeTotalVars(m, fnScope))
}
