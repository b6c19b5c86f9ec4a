package compiler

import "fmt"

// ReprKind discriminates ValRepr's variant.
type ReprKind int

const (
	// ReprZeroSized carries no storage: the representation of Void. It can
	// be neither read nor written.
	ReprZeroSized ReprKind = iota
	// ReprSimple is a scalar, string-slot, or list tag directly usable as
	// an operand in emitted code (e.g. "A", "Str3", "⌊LIST0").
	ReprSimple
	// ReprIndexString is a complex-number-encoded reference to a slice of
	// the master string Str0: the tag names a scalar cell whose numeric
	// value, at runtime, is begin + length/9.
	ReprIndexString
)

// ValRepr is a backend storage handle assigned by the variable allocator
// (allocate.go) and consumed by the code emitter (emit.go).
type ValRepr struct {
	Kind ReprKind
	Tag  string
}

func ZeroSizedRepr() ValRepr            { return ValRepr{Kind: ReprZeroSized} }
func SimpleRepr(tag string) ValRepr     { return ValRepr{Kind: ReprSimple, Tag: tag} }
func IndexStringRepr(tag string) ValRepr { return ValRepr{Kind: ReprIndexString, Tag: tag} }

func (r ValRepr) IsZeroSized() bool { return r.Kind == ReprZeroSized }

// scalarAlphabet is the 27-entry alphabet of scalar variable names: A
// through Z, then θ — the 27th slot spec.md names explicitly (the
// original prototype's bound check excludes it; spec.md is authoritative
// here and this implementation accepts all 27).
var scalarAlphabet = func() []string {
	names := make([]string, 27)
	for i := 0; i < 26; i++ {
		names[i] = string(rune('A' + i))
	}
	names[26] = "θ"
	return names
}()

const maxScalars = 27
const maxStrings = 9 // Str1..Str9; Str0 is reserved as the master string

// encodeIndexString computes the begin+length/9 complex encoding described
// in spec.md §4.5/§4.7. This is the pure math behind the trick; the
// emitted TI-84 BASIC expression that performs the equivalent computation
// at runtime lives in emit.go.
func encodeIndexString(begin, length int) complex128 {
	return complex(float64(begin), float64(length)/9.0)
}

// decodeIndexString inverts encodeIndexString, per spec.md's testable
// property: "(iPart, 9·fPart)" recovers (begin, length).
func decodeIndexString(encoded complex128) (begin, length int) {
	begin = int(real(encoded))
	length = int(imag(encoded)*9 + 0.5) // round to the nearest integer
	return
}

// fmtScalarOverflow and fmtStringOverflow are the resource-exhaustion
// error messages for the allocator (kept here alongside the constants they
// describe).
func fmtScalarOverflow(n int) error {
	return fmt.Errorf("too many numeric variables: declared %d, limit is %d (A-Z, θ)", n, maxScalars)
}

func fmtStringOverflow(n int) error {
	return fmt.Errorf("too many string variables: declared %d, limit is %d (Str1..Str9)", n, maxStrings)
}
