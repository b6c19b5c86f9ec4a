package compiler

import (
	"fmt"
	"strings"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// buildFlags tracks which shared-state initializers the emitted program
// needs, discovered as a side effect of emission. Grounded on
// original_source/src/builder.rs::BuildFlags.
type buildFlags struct {
	MasterString bool // any string touched at all: Str0 must start empty.
	StackFrames  bool // any function defined or called: ⌊RES/⌊ARGS needed.
	ObjectMemory bool // any struct constructed: ⌊OBJ needed.
}

// emitter walks the checked, allocated AST and renders TI-84 Plus BASIC
// source text. Grounded on original_source/src/builder.rs, adapted from its
// recursive Sexpr::build method to a arena-indexed walk, and from its
// direct-push calling convention to spec.md §4.6's ⌊AUX-staged convention.
type emitter struct {
	m    *Manager
	prgm *strings.Builder
	flags *buildFlags

	funcLabels map[FuncDeclId]string
	callLabels map[FuncDeclId][]string
}

// Emit renders m's checked AST as a complete TI-84 Plus BASIC program,
// including the header computed from flags discovered during emission.
func Emit(m *Manager) (string, error) {
	e := &emitter{
		m:          m,
		prgm:       &strings.Builder{},
		flags:      &buildFlags{},
		funcLabels: map[FuncDeclId]string{},
		callLabels: map[FuncDeclId][]string{},
	}

	for _, id := range m.TopLevel {
		if _, err := e.emit(id); err != nil {
			return "", err
		}
	}

	if len(m.Funcs) > 0 {
		e.flags.StackFrames = true
		e.prgm.WriteString("Return\n")
		for id := range m.Funcs {
			if err := e.emitFuncDef(FuncDeclId(id)); err != nil {
				return "", err
			}
		}
	}

	var header strings.Builder
	buildHeader(&header, e.flags)
	header.WriteString(e.prgm.String())
	return header.String(), nil
}

// buildHeader prepends exactly the shared-state initializers flagged during
// emission. Grounded on original_source/src/builder.rs::build_header.
func buildHeader(header *strings.Builder, flags *buildFlags) {
	if flags.MasterString {
		header.WriteString("\"\"→Str0\n")
	}
	if flags.StackFrames {
		header.WriteString("{0}→⌊RES\n{0}→⌊ARGS\n")
	}
	if flags.ObjectMemory {
		header.WriteString("{0}→⌊OBJ\n")
	}
}

// read renders r as a TI-84 BASIC expression. Grounded on
// variablizer.rs::ValRepr::read, with the IndexString case rewritten for
// spec.md's begin+length/9 encoding in place of the original's idim trick.
func (e *emitter) read(r ValRepr) string {
	switch r.Kind {
	case ReprZeroSized:
		return ""
	case ReprSimple:
		return r.Tag
	case ReprIndexString:
		return fmt.Sprintf("sub(Str0,iPart(%s),9fPart(%s))", r.Tag, r.Tag)
	}
	panic("unreachable repr kind")
}

// write emits the assignment dst := value, suppressing no-op assignments
// (identical handles on both sides) and writes of Void. Grounded on
// variablizer.rs::ValRepr::write.
func (e *emitter) write(dst, value ValRepr) {
	valueText := e.read(value)
	dstText := e.read(dst)
	if dstText == "" || valueText == "" || dstText == valueText {
		return
	}
	switch dst.Kind {
	case ReprZeroSized:
	case ReprSimple:
		e.prgm.WriteString(fmt.Sprintf("%s→%s\n", valueText, dst.Tag))
	case ReprIndexString:
		e.flags.MasterString = true
		e.prgm.WriteString(fmt.Sprintf("Str0+%s→Str0\n", valueText))
		e.prgm.WriteString(fmt.Sprintf("(length(Str0)-length(%s)+1)+(length(%s)/9)→%s\n", valueText, valueText, dst.Tag))
	}
}

// transmuteNum returns a numeric-cell-safe expression for r of type t,
// appending to Str0 first if a string must be folded into the begin+length/9
// encoding. Grounded on variablizer.rs::ValRepr::transmute_num.
func (e *emitter) transmuteNum(r ValRepr, t Type) (string, error) {
	switch t.Kind {
	case TInt, TReal, TBoole, TCustom:
		return e.read(r), nil
	case TString:
		if r.Kind == ReprIndexString {
			return r.Tag, nil
		}
		text := e.read(r)
		e.flags.MasterString = true
		e.prgm.WriteString(fmt.Sprintf("Str0+%s→Str0\n", text))
		return fmt.Sprintf("(length(Str0)-length(%s)+1)+(length(%s)/9)", text, text), nil
	default:
		return "", fmt.Errorf("a value of type %s has no numeric representation", t)
	}
}

func (e *emitter) funcLabel(id FuncDeclId) (string, error) {
	if l, ok := e.funcLabels[id]; ok {
		return l, nil
	}
	l, err := e.m.NextLabel()
	if err != nil {
		return "", err
	}
	e.funcLabels[id] = l
	return l, nil
}

func (e *emitter) callLabel(funcID FuncDeclId, callID int) (string, error) {
	labels := e.callLabels[funcID]
	if labels == nil {
		labels = make([]string, e.m.Func(funcID).CallSites)
		e.callLabels[funcID] = labels
	}
	if labels[callID] == "" {
		l, err := e.m.NextLabel()
		if err != nil {
			return "", err
		}
		labels[callID] = l
	}
	return labels[callID], nil
}

func (e *emitter) emit(id SexprId) (ValRepr, error) {
	node := e.m.Node(id)

	switch node.Kind {
	case KindStringLiteral:
		// Every string, however it is ultimately stored, lives under the
		// master-string discipline (§4.7): touching one at all means Str0
		// must start from a known empty state.
		e.flags.MasterString = true
		return SimpleRepr(node.Tok.Text(e.m.Source)), nil

	case KindIntegerLiteral, KindRealLiteral:
		return SimpleRepr(node.Tok.Text(e.m.Source)), nil

	case KindBooleLiteral:
		if node.Data.(BooleLiteralData).Value {
			return SimpleRepr("1"), nil
		}
		return SimpleRepr("0"), nil

	case KindIdentifier:
		name := node.Data.(IdentifierData).Name
		scopeID, idx, ok := resolveVariable(e.m, node.Scope, name)
		if !ok {
			panic("identifier escaped scoping unresolved: " + name)
		}
		return e.m.Scope(scopeID).Reprs[idx], nil

	case KindDeclare:
		d := node.Data.(DeclareData)
		bodyScope := e.m.Scope(d.BodyScope)
		idx, ok := bodyScope.localIndex(d.Name)
		if !ok {
			panic("declare: bound name missing from its own body scope")
		}
		variable := bodyScope.Reprs[idx]
		exprRepr, err := e.emit(d.Init)
		if err != nil {
			return ValRepr{}, err
		}
		e.write(variable, exprRepr)
		return e.emit(d.Body)

	case KindAssign:
		d := node.Data.(AssignData)
		scopeID, idx, ok := resolveVariable(e.m, node.Scope, d.Name)
		if !ok {
			panic("assign to unresolved variable escaped scoping")
		}
		variable := e.m.Scope(scopeID).Reprs[idx]
		exprRepr, err := e.emit(d.Expr)
		if err != nil {
			return ValRepr{}, err
		}
		e.write(variable, exprRepr)
		return variable, nil

	case KindIfSwitch:
		d := node.Data.(IfSwitchData)
		variable := node.Repr
		predRepr, err := e.emit(d.Pred)
		if err != nil {
			return ValRepr{}, err
		}
		e.prgm.WriteString(fmt.Sprintf("If %s\nThen\n", e.read(predRepr)))
		thenRepr, err := e.emit(d.Then)
		if err != nil {
			return ValRepr{}, err
		}
		e.write(variable, thenRepr)
		e.prgm.WriteString("Else\n")
		elseRepr, err := e.emit(d.Else)
		if err != nil {
			return ValRepr{}, err
		}
		e.write(variable, elseRepr)
		e.prgm.WriteString("End\n")
		return variable, nil

	case KindWhileLoop:
		d := node.Data.(WhileLoopData)
		predRepr, err := e.emit(d.Pred)
		if err != nil {
			return ValRepr{}, err
		}
		e.prgm.WriteString(fmt.Sprintf("While %s\n", e.read(predRepr)))
		bodyRepr, err := e.emit(d.Body)
		if err != nil {
			return ValRepr{}, err
		}
		e.prgm.WriteString("End\n")
		return bodyRepr, nil

	case KindBlock:
		result := ZeroSizedRepr()
		for _, s := range node.Data.(BlockData).Stmts {
			r, err := e.emit(s)
			if err != nil {
				return ValRepr{}, err
			}
			result = r
		}
		return result, nil

	case KindList:
		d := node.Data.(ListData)
		variable := node.Repr
		e.prgm.WriteString(fmt.Sprintf("%d→dim(%s)\n", len(d.Elements), variable.Tag))
		for i, elemID := range d.Elements {
			elemRepr, err := e.emit(elemID)
			if err != nil {
				return ValRepr{}, err
			}
			handle, err := e.transmuteNum(elemRepr, e.m.Node(elemID).Type)
			if err != nil {
				return ValRepr{}, NewDiagAt(err.Error(), e.m.Node(elemID).Tok)
			}
			e.prgm.WriteString(fmt.Sprintf("%s→%s(%d)\n", handle, variable.Tag, i+1))
		}
		return variable, nil

	case KindListGet:
		d := node.Data.(ListGetData)
		listRepr, err := e.emit(d.List)
		if err != nil {
			return ValRepr{}, err
		}
		idxRepr, err := e.emit(d.Index)
		if err != nil {
			return ValRepr{}, err
		}
		handle := fmt.Sprintf("%s(%s)", e.read(listRepr), e.read(idxRepr))
		if node.Type.Kind == TString {
			return IndexStringRepr(handle), nil
		}
		return SimpleRepr(handle), nil

	case KindListSet:
		d := node.Data.(ListSetData)
		listRepr, err := e.emit(d.List)
		if err != nil {
			return ValRepr{}, err
		}
		idxRepr, err := e.emit(d.Index)
		if err != nil {
			return ValRepr{}, err
		}
		elemRepr, err := e.emit(d.Elem)
		if err != nil {
			return ValRepr{}, err
		}
		handle, err := e.transmuteNum(elemRepr, e.m.Node(d.Elem).Type)
		if err != nil {
			return ValRepr{}, NewDiagAt(err.Error(), e.m.Node(d.Elem).Tok)
		}
		e.prgm.WriteString(fmt.Sprintf("%s→%s(%s)\n", handle, e.read(listRepr), e.read(idxRepr)))
		return ZeroSizedRepr(), nil

	case KindFuncDef, KindStructDef:
		return ZeroSizedRepr(), nil

	case KindStructInit:
		d := node.Data.(StructInitData)
		e.flags.ObjectMemory = true
		variable := node.Repr
		e.prgm.WriteString(fmt.Sprintf("dim(⌊OBJ)+1→%s\n", variable.Tag))
		for i, argID := range d.Args {
			argRepr, err := e.emit(argID)
			if err != nil {
				return ValRepr{}, err
			}
			handle, err := e.transmuteNum(argRepr, e.m.Node(argID).Type)
			if err != nil {
				return ValRepr{}, NewDiagAt(err.Error(), e.m.Node(argID).Tok)
			}
			e.prgm.WriteString(fmt.Sprintf("%s→⌊OBJ(%s+%d)\n", handle, variable.Tag, i))
		}
		return variable, nil

	case KindStructGet:
		d := node.Data.(StructGetData)
		baseRepr, err := e.emit(d.Expr)
		if err != nil {
			return ValRepr{}, err
		}
		offset := e.m.Struct(d.StructID).FieldOffset(d.Field)
		handle := fmt.Sprintf("⌊OBJ(%s+%d)", e.read(baseRepr), offset)
		if node.Type.Kind == TString {
			return IndexStringRepr(handle), nil
		}
		return SimpleRepr(handle), nil

	case KindStructSet:
		d := node.Data.(StructSetData)
		baseRepr, err := e.emit(d.Expr)
		if err != nil {
			return ValRepr{}, err
		}
		sd := e.m.Struct(d.StructID)
		offset := sd.FieldOffset(d.Field)
		valueRepr, err := e.emit(d.Value)
		if err != nil {
			return ValRepr{}, err
		}
		handle, err := e.transmuteNum(valueRepr, sd.FieldTypes[offset])
		if err != nil {
			return ValRepr{}, NewDiagAt(err.Error(), node.Tok)
		}
		e.prgm.WriteString(fmt.Sprintf("%s→⌊OBJ(%s+%d)\n", handle, e.read(baseRepr), offset))
		return ZeroSizedRepr(), nil

	case KindBuiltIn:
		d := node.Data.(BuiltInData)
		b := e.m.Builtins[d.BuiltinID]
		argHandles := make([]string, len(d.Args))
		for i, argID := range d.Args {
			r, err := e.emit(argID)
			if err != nil {
				return ValRepr{}, err
			}
			argHandles[i] = e.read(r)
		}
		code, err := vecFmt(b.CodeTemplate, argHandles)
		if err != nil {
			return ValRepr{}, NewDiagAt(err.Error(), node.Tok)
		}
		e.prgm.WriteString(code)
		handle, err := vecFmt(b.HandleTemplate, argHandles)
		if err != nil {
			return ValRepr{}, NewDiagAt(err.Error(), node.Tok)
		}
		return SimpleRepr(handle), nil

	case KindFuncCall:
		return e.emitFuncCall(node)

	case KindFormat:
		return e.emitFormat(node)

	case KindOther:
		panic("emitting an unresolved Other node")

	default:
		panic(fmt.Sprintf("emitting unhandled kind %s", node.Kind))
	}
}

// emitFuncCall implements spec.md §4.6's calling convention: stage the
// frame in ⌊AUX, augment it onto ⌊ARGS, Goto the function, resume at the
// call's own label, pop the frame, then read the result off ⌊RES. Diverges
// from original_source/src/builder.rs's direct-push-to-⌊ARGS convention,
// which is the "redesigned" convention spec.md §9 calls for.
func (e *emitter) emitFuncCall(node *Sexpr) (ValRepr, error) {
	d := node.Data.(FuncCallData)
	fd := e.m.Func(d.FuncID)
	e.flags.StackFrames = true

	fnScope := e.m.Node(fd.Body).Scope
	total := scopeTotalVars(e.m, fnScope)

	// Every argument's code (including any nested call, which stages its
	// own frame in the same ⌊AUX) is emitted before this call's frame is
	// staged, so a nested call never overwrites a half-built frame.
	argReprs := make([]ValRepr, len(d.Args))
	for i, argID := range d.Args {
		argRepr, err := e.emit(argID)
		if err != nil {
			return ValRepr{}, err
		}
		argReprs[i] = argRepr
	}

	e.prgm.WriteString("{0}→⌊AUX\n")
	e.prgm.WriteString(fmt.Sprintf("%d→dim(⌊AUX)\n", total+1))
	e.prgm.WriteString(fmt.Sprintf("%d→⌊AUX(dim(⌊AUX))\n", d.CallID))

	// Each argument lands at the slot for its parameter's own K (the same
	// ⌊ARGS(dim(⌊ARGS)-K) the callee's allocator assigned that parameter),
	// addressed directly rather than pushed — spec.md §4.6 step 4.
	for i, argID := range d.Args {
		handle, err := e.transmuteNum(argReprs[i], e.m.Node(argID).Type)
		if err != nil {
			return ValRepr{}, NewDiagAt(err.Error(), e.m.Node(argID).Tok)
		}
		k := i + 1
		e.prgm.WriteString(fmt.Sprintf("%s→⌊AUX(dim(⌊AUX)-%d)\n", handle, k))
	}
	e.prgm.WriteString("augment(⌊ARGS,⌊AUX)→⌊ARGS\n")

	funcLabel, err := e.funcLabel(d.FuncID)
	if err != nil {
		return ValRepr{}, err
	}
	callLabel, err := e.callLabel(d.FuncID, d.CallID)
	if err != nil {
		return ValRepr{}, err
	}
	e.prgm.WriteString(fmt.Sprintf("Goto %s\n", funcLabel))
	e.prgm.WriteString(fmt.Sprintf("Lbl %s\n", callLabel))
	e.prgm.WriteString(fmt.Sprintf("dim(⌊ARGS)-%d→dim(⌊ARGS)\n", total+1))

	if fd.ReturnType.Kind == TVoid {
		return ZeroSizedRepr(), nil
	}
	e.write(node.Repr, SimpleRepr("⌊RES(dim(⌊RES))"))
	return node.Repr, nil
}

// emitFuncDef is original_source/src/builder.rs::build_func adapted to the
// ⌊AUX-staged convention: prologue label, body, push the result onto
// ⌊RES if non-void, then a dispatch table of every known call site
// returning control to its own resume label.
func (e *emitter) emitFuncDef(funcID FuncDeclId) error {
	fd := e.m.Func(funcID)
	label, err := e.funcLabel(funcID)
	if err != nil {
		return err
	}
	e.prgm.WriteString(fmt.Sprintf("Lbl %s\n", label))

	bodyRepr, err := e.emit(fd.Body)
	if err != nil {
		return err
	}
	if fd.ReturnType.Kind != TVoid {
		handle, err := e.transmuteNum(bodyRepr, fd.ReturnType)
		if err != nil {
			return NewDiagAt(err.Error(), e.m.Node(fd.Body).Tok)
		}
		e.prgm.WriteString(fmt.Sprintf("%s→⌊RES(dim(⌊RES)+1)\n", handle))
	}

	for callID := 0; callID < fd.CallSites; callID++ {
		label, err := e.callLabel(funcID, callID)
		if err != nil {
			return err
		}
		e.prgm.WriteString(fmt.Sprintf("If ⌊ARGS(dim(⌊ARGS))=%d\nGoto %s\n", callID, label))
	}
	return nil
}

// --- stringification (spec.md §4.7) ---

const maxStringifyDepth = 2

// emitFormat lowers a Format node: record the master string's current end,
// stringify every expression in order, then fold the accumulated span into
// a single begin+length/9 handle. Grounded on spec.md §4.6/§4.7; builder.rs
// has no equivalent (the older dialect it ports has no format form).
func (e *emitter) emitFormat(node *Sexpr) (ValRepr, error) {
	e.flags.MasterString = true
	begin := node.Repr.Tag
	scratch := node.Aux.Tag

	e.prgm.WriteString(fmt.Sprintf("length(Str0)+1→%s\n", begin))
	for _, exprID := range node.Data.(FormatData).Exprs {
		repr, err := e.emit(exprID)
		if err != nil {
			return ValRepr{}, err
		}
		if err := e.stringify(node.Tok, repr, e.m.Node(exprID).Type, scratch, 1); err != nil {
			return ValRepr{}, err
		}
	}
	e.prgm.WriteString(fmt.Sprintf("%s+(1+length(Str0)-%s)/9→%s\n", begin, begin, begin))
	return node.Repr, nil
}

// stringify appends value's textual form to Str0, per the table in
// spec.md §4.7. depth counts collection nesting (a Format's direct
// expression starts at 1); depth beyond maxStringifyDepth is rejected.
func (e *emitter) stringify(tok lexer.Token, value ValRepr, t Type, scratch string, depth int) error {
	switch t.Kind {
	case TString:
		e.prgm.WriteString(fmt.Sprintf("Str0+%s→Str0\n", e.read(value)))

	case TVoid:
		e.prgm.WriteString(`Str0+"void"→Str0` + "\n")

	case TBoole:
		h := e.read(value)
		e.prgm.WriteString(fmt.Sprintf("If %s\nThen\nStr0+\"true\"→Str0\nElse\nStr0+\"false\"→Str0\nEnd\n", h))

	case TInt:
		e.stringifyInt(e.read(value), scratch)

	case TReal:
		e.stringifyReal(e.read(value), scratch)

	case TList:
		if depth > maxStringifyDepth {
			return NewDiagAt("stringification nesting deeper than two levels is not supported", tok)
		}
		h := e.read(value)
		e.prgm.WriteString(`Str0+"{"→Str0` + "\n")
		e.prgm.WriteString(fmt.Sprintf("1→%s\n", scratch))
		e.prgm.WriteString(fmt.Sprintf("While %s≤dim(%s)\n", scratch, h))
		e.prgm.WriteString(fmt.Sprintf("If %s>1\nThen\nStr0+\" \"→Str0\nEnd\n", scratch))
		elemHandle := fmt.Sprintf("%s(%s)", h, scratch)
		var elemRepr ValRepr
		if t.Elem.Kind == TString {
			elemRepr = IndexStringRepr(elemHandle)
		} else {
			elemRepr = SimpleRepr(elemHandle)
		}
		if err := e.stringify(tok, elemRepr, *t.Elem, scratch, depth+1); err != nil {
			return err
		}
		e.prgm.WriteString(fmt.Sprintf("%s+1→%s\n", scratch, scratch))
		e.prgm.WriteString("End\n")
		e.prgm.WriteString(`Str0+"}"→Str0` + "\n")

	case TCustom:
		if depth > maxStringifyDepth {
			return NewDiagAt("stringification nesting deeper than two levels is not supported", tok)
		}
		sd := e.m.Struct(t.StructID)
		e.prgm.WriteString(fmt.Sprintf("Str0+\"<Struct %s, idx: \"→Str0\n", sd.Name))
		e.stringifyInt(e.read(value), scratch)
		e.prgm.WriteString(`Str0+">"→Str0` + "\n")

	default:
		panic(fmt.Sprintf("stringifying unhandled type %s", t))
	}
	return nil
}

// stringifyInt appends h's decimal digits to Str0, most significant digit
// first, via repeated division by a shrinking power of ten — the "log,
// iPart, fPart" technique spec.md §4.7 names. scratch holds the current
// divisor; h is re-evaluated each iteration rather than copied down, so it
// must be a side-effect-free expression (always true here: every handle
// this package produces is a variable, literal, or pure read expression).
func (e *emitter) stringifyInt(h, scratch string) {
	e.prgm.WriteString(fmt.Sprintf("If %s<0\nThen\nStr0+\"­\"→Str0\nEnd\n", h))
	e.prgm.WriteString(fmt.Sprintf("If %s=0\n", h))
	e.prgm.WriteString("Then\n")
	e.prgm.WriteString(`Str0+"0"→Str0` + "\n")
	e.prgm.WriteString("Else\n")
	e.prgm.WriteString(fmt.Sprintf("10^iPart(log(abs(%s)))→%s\n", h, scratch))
	e.prgm.WriteString(fmt.Sprintf("While %s≥1\n", scratch))
	e.prgm.WriteString(fmt.Sprintf(
		"Str0+sub(\"0123456789\",iPart(abs(%s)/%s)-10iPart(iPart(abs(%s)/%s)/10)+1,1)→Str0\n",
		h, scratch, h, scratch))
	e.prgm.WriteString(fmt.Sprintf("%s/10→%s\n", scratch, scratch))
	e.prgm.WriteString("End\n")
	e.prgm.WriteString("End\n")
}

// stringifyReal appends h's integer digits (via stringifyInt on its
// truncated magnitude), a period, then fractional digits extracted by
// repeatedly multiplying the residual by ten until it reaches zero.
func (e *emitter) stringifyReal(h, scratch string) {
	e.stringifyInt(fmt.Sprintf("iPart(%s)", h), scratch)
	e.prgm.WriteString(`Str0+"."→Str0` + "\n")
	e.prgm.WriteString(fmt.Sprintf("fPart(abs(%s))→%s\n", h, scratch))
	e.prgm.WriteString(fmt.Sprintf("While %s>0\n", scratch))
	e.prgm.WriteString(fmt.Sprintf("10%s→%s\n", scratch, scratch))
	e.prgm.WriteString(fmt.Sprintf("Str0+sub(\"0123456789\",iPart(%s)+1,1)→Str0\n", scratch))
	e.prgm.WriteString(fmt.Sprintf("%s-iPart(%s)→%s\n", scratch, scratch, scratch))
	e.prgm.WriteString("End\n")
}
