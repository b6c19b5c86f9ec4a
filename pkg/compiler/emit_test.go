package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) string {
	t.Helper()
	out, _, err := Compile(src, Options{})
	require.NoError(t, err)
	return out
}

// Scenario 1, spec.md §8: no strings, no functions, no structs touched —
// the emitted program carries no header at all.
func TestEmitScenario1DeclareAndPrintInt(t *testing.T) {
	out := compileOK(t, `(declare x 3 (print x))`)
	require.Equal(t, "3→A\nDisp A\n", out)
}

// Scenario 2: a string literal forces the master-string header even though
// this program never builds an IndexString-encoded value.
func TestEmitScenario2DeclareAndPrintString(t *testing.T) {
	out := compileOK(t, `(declare x "hi" (print x))`)
	require.Equal(t, "\"\"→Str0\n\"hi\"→Str1\nDisp Str1\n", out)
}

// Scenario 3: If/Then/Else writes each arm's result into the same
// pre-allocated register.
func TestEmitScenario3IfSwitch(t *testing.T) {
	out := compileOK(t, `(if true 1 2)`)
	require.Equal(t, "If 1\nThen\n1→A\nElse\n2→A\nEnd\n", out)
}

// Scenario 6: a struct's base pointer is captured once, before its field
// appends, and every later access reads through that same register. The
// final get-field is a bare top-level expression: nothing is written for
// it (no print call was asked for), it just yields the handle ⌊OBJ(A+1)
// that scenario 6 describes — the calculator auto-displays a bare
// trailing expression without the compiler needing to emit anything.
func TestEmitScenario6StructInitAndGetField(t *testing.T) {
	out := compileOK(t, `(struct P x:int y:int) (declare p (P 1 2) (get-field p y))`)
	require.Equal(t, "{0}→⌊OBJ\ndim(⌊OBJ)+1→A\n1→⌊OBJ(A+0)\n2→⌊OBJ(A+1)\n", out)
}

func TestEmitWhileLoop(t *testing.T) {
	out := compileOK(t, `(declare i 0 (while (lesser i 10) (assign i (add i 1))))`)
	require.Contains(t, out, "While (A<10)\n")
	require.Contains(t, out, "(A+1)→A\n")
	require.Contains(t, out, "End\n")
}

func TestEmitFuncCallUsesAuxStagedCallingConvention(t *testing.T) {
	// spec.md §8 scenario 5: add(2,3) places a's value (2) at K=1 and b's
	// value (3) at K=2 by direct indexed write, not by sequential push.
	out := compileOK(t, `(func add a:int b:int -> int a) (add 2 3)`)
	require.Contains(t, out, "{0}→⌊AUX\n")
	require.Contains(t, out, "3→dim(⌊AUX)\n")
	require.Contains(t, out, "2→⌊AUX(dim(⌊AUX)-1)\n")
	require.Contains(t, out, "3→⌊AUX(dim(⌊AUX)-2)\n")
	require.Contains(t, out, "augment(⌊ARGS,⌊AUX)→⌊ARGS\n")
	require.Contains(t, out, "Goto ")
	require.Contains(t, out, "Lbl ")
	require.Contains(t, out, "dim(⌊ARGS)-3→dim(⌊ARGS)\n")
	require.Contains(t, out, "Return\n")
	require.Contains(t, out, "{0}→⌊RES\n{0}→⌊ARGS\n")
}

func TestEmitFuncDefEmitsDispatchTableEntryPerCallSite(t *testing.T) {
	out := compileOK(t, `(func id a:int -> int a) (id 1) (id 2)`)
	require.Contains(t, out, "If ⌊ARGS(dim(⌊ARGS))=0\nGoto ")
	require.Contains(t, out, "If ⌊ARGS(dim(⌊ARGS))=1\nGoto ")
}

func TestEmitListLiteralAndGet(t *testing.T) {
	out := compileOK(t, `(declare l (list 1 2 3) (get l 0))`)
	require.Contains(t, out, "3→dim(")
	require.Contains(t, out, "1→")
	require.Contains(t, out, "2→")
}

func TestEmitFormatStringifiesIntAndAppendsToMasterString(t *testing.T) {
	out := compileOK(t, `(declare x 3 (format "x=" x))`)
	require.Contains(t, out, "\"\"→Str0\n")
	require.Contains(t, out, `Str0+"x="→Str0`)
	require.Contains(t, out, "length(Str0)+1→")
}

func TestEmitFormatNegativeIntUsesTISignCharacter(t *testing.T) {
	out := compileOK(t, `(declare x 0 (assign x (sub 0 5)) (format x))`)
	require.Contains(t, out, "Str0+\"­\"→Str0")
}

func TestEmitTwoLevelStringifyNestingSucceeds(t *testing.T) {
	// A list cannot be stored as a list element (it has no numeric form), so
	// the second level here is a struct inside a list.
	require.NotPanics(t, func() {
		compileOK(t, `(struct P x:int y:int) (declare l (list (P 1 2) (P 3 4)) (format l))`)
	})
}

// A list nested inside a list is rejected when the outer list literal is
// emitted (a List has no numeric form), before stringification runs.
func TestEmitThreeLevelStringifyNestingFails(t *testing.T) {
	_, _, err := Compile(`(declare l (list (list (list 1) ) ) (format l))`, Options{})
	require.Error(t, err)
}

func TestEmitBooleanStringification(t *testing.T) {
	out := compileOK(t, `(format true)`)
	require.Contains(t, out, `Str0+"true"→Str0`)
	require.Contains(t, out, `Str0+"false"→Str0`)
}

