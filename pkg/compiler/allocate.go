package compiler

import "fmt"

// allocateVariables walks every top-level form assigning each live value a
// backend storage handle (ValRepr). Grounded on
// original_source/src/variablizer.rs (VariableManager, Sexpr::create_variables),
// adapted to this package's arena types and to spec.md §4.5's pre-order rule
// and 27-scalar bound (the original prototype's counter stops one short, at
// 26; spec.md is authoritative and is what maxScalars encodes).
func allocateVariables(m *Manager) error {
	a := &allocator{m: m, str: 1, funcArg: 1}
	for _, id := range m.TopLevel {
		if err := a.walk(id); err != nil {
			return err
		}
	}
	return nil
}

// allocator is the counter bank behind ValRepr assignment. Counters are
// monotonic and never release, per spec.md §4.5.
type allocator struct {
	m *Manager

	scalar  int // next scalar index into scalarAlphabet
	str     int // next Str slot, starts at 1 (Str0 is reserved)
	list    int // next ⌊LISTn suffix
	funcArg int // next in-func-frame offset, starts at 1

	// inFuncDef is toggled on entering/exiting a FuncDef: while true every
	// repr minted is a ⌊ARGS(dim(⌊ARGS)-K) frame slot instead of a global
	// scalar/string/list tag.
	inFuncDef bool
}

func (a *allocator) scalarTag() (string, error) {
	n := a.scalar
	a.scalar++
	if n >= maxScalars {
		return "", fmtScalarOverflow(n + 1)
	}
	return scalarAlphabet[n], nil
}

func (a *allocator) stringTag() (string, error) {
	n := a.str
	a.str++
	if n > maxStrings {
		return "", fmtStringOverflow(n)
	}
	return fmt.Sprintf("Str%d", n), nil
}

func (a *allocator) listTag() string {
	n := a.list
	a.list++
	return fmt.Sprintf("⌊LIST%d", n)
}

func (a *allocator) funcArgTag() string {
	n := a.funcArg
	a.funcArg++
	return fmt.Sprintf("⌊ARGS(dim(⌊ARGS)-%d)", n)
}

// makeRepr mints a fresh ValRepr for a value of type t, dispatching on
// whichever counter bank is active. Grounded on
// variablizer.rs::VariableManager::make_repr / interpret_num.
func (a *allocator) makeRepr(t Type) (ValRepr, error) {
	if a.inFuncDef {
		if t.Kind == TVoid {
			return ZeroSizedRepr(), nil
		}
		tag := a.funcArgTag()
		if t.Kind == TString {
			return IndexStringRepr(tag), nil
		}
		return SimpleRepr(tag), nil
	}
	switch t.Kind {
	case TVoid:
		return ZeroSizedRepr(), nil
	case TString:
		tag, err := a.stringTag()
		if err != nil {
			return ValRepr{}, err
		}
		return SimpleRepr(tag), nil
	case TList:
		return SimpleRepr(a.listTag()), nil
	default: // Int, Real, Boole, Custom (a struct value is a numeric pointer)
		tag, err := a.scalarTag()
		if err != nil {
			return ValRepr{}, err
		}
		return SimpleRepr(tag), nil
	}
}

// attachFree mints a repr for node's own type and stores it as an anonymous
// intermediate on the node itself, recording the allocation against the
// node's owning scope so scopeTotalVars can size call frames correctly.
func (a *allocator) attachFree(node *Sexpr) error {
	r, err := a.makeRepr(node.Type)
	if err != nil {
		return err
	}
	node.Repr = r
	a.m.Scope(node.Scope).UnboundCount++
	return nil
}

// walk implements the pre-order rule (spec.md §4.5): a node mints its own
// intermediates before recursing into children, so parents occupy
// lower-numbered registers than their operands.
func (a *allocator) walk(id SexprId) error {
	node := a.m.Node(id)

	switch node.Kind {
	case KindStringLiteral, KindIntegerLiteral, KindRealLiteral, KindBooleLiteral,
		KindIdentifier, KindStructDef:
		return nil

	case KindDeclare:
		d := node.Data.(DeclareData)
		if err := a.walk(d.Init); err != nil {
			return err
		}
		bodyScope := a.m.Scope(d.BodyScope)
		idx, ok := bodyScope.localIndex(d.Name)
		if !ok {
			panic("declare: bound name missing from its own body scope")
		}
		// A struct init's snapshot register (dim(⌊OBJ)+1, captured before
		// the field appends that follow it) IS the struct value: bind the
		// variable straight onto that same register instead of minting a
		// second one and copying, so write() sees identical handles on
		// both sides and emits nothing (spec.md §4.6 Declare/Assign rule).
		var r ValRepr
		if initNode := a.m.Node(d.Init); initNode.Kind == KindStructInit {
			r = initNode.Repr
		} else {
			var err error
			r, err = a.makeRepr(*bodyScope.VarTypes[idx])
			if err != nil {
				return err
			}
		}
		bodyScope.Reprs[idx] = r
		return a.walk(d.Body)

	case KindAssign:
		return a.walk(node.Data.(AssignData).Expr)

	case KindIfSwitch:
		d := node.Data.(IfSwitchData)
		if err := a.attachFree(node); err != nil {
			return err
		}
		if err := a.walk(d.Pred); err != nil {
			return err
		}
		if err := a.walk(d.Then); err != nil {
			return err
		}
		return a.walk(d.Else)

	case KindWhileLoop:
		d := node.Data.(WhileLoopData)
		if err := a.walk(d.Pred); err != nil {
			return err
		}
		return a.walk(d.Body)

	case KindBlock:
		for _, s := range node.Data.(BlockData).Stmts {
			if err := a.walk(s); err != nil {
				return err
			}
		}
		return nil

	case KindList:
		d := node.Data.(ListData)
		if err := a.attachFree(node); err != nil {
			return err
		}
		for _, e := range d.Elements {
			if err := a.walk(e); err != nil {
				return err
			}
		}
		return nil

	case KindListGet:
		d := node.Data.(ListGetData)
		if err := a.walk(d.List); err != nil {
			return err
		}
		return a.walk(d.Index)

	case KindListSet:
		d := node.Data.(ListSetData)
		if err := a.walk(d.List); err != nil {
			return err
		}
		if err := a.walk(d.Index); err != nil {
			return err
		}
		return a.walk(d.Elem)

	case KindFuncDef:
		d := node.Data.(FuncDefData)
		fd := a.m.Func(d.FuncID)
		fnScope := a.m.Node(fd.Body).Scope

		prev := a.inFuncDef
		prevFuncArg := a.funcArg
		a.inFuncDef = true
		a.funcArg = 1
		for i := range fd.ArgNames {
			r, err := a.makeRepr(fd.ArgTypes[i])
			if err != nil {
				return err
			}
			a.m.Scope(fnScope).Reprs[i] = r
		}
		if err := a.walk(fd.Body); err != nil {
			return err
		}
		a.inFuncDef = prev
		a.funcArg = prevFuncArg
		return nil

	case KindStructGet:
		return a.walk(node.Data.(StructGetData).Expr)

	case KindStructSet:
		d := node.Data.(StructSetData)
		if err := a.walk(d.Expr); err != nil {
			return err
		}
		return a.walk(d.Value)

	case KindStructInit:
		// A genuine scalar register is required here, not just the text
		// "dim(⌊OBJ)+1": the struct's base offset must be captured before
		// its field appends grow ⌊OBJ, or every later field access would
		// read the wrong (shifted) slot (spec.md §4.6 struct init/get/set).
		d := node.Data.(StructInitData)
		if err := a.attachFree(node); err != nil {
			return err
		}
		for _, arg := range d.Args {
			if err := a.walk(arg); err != nil {
				return err
			}
		}
		return nil

	case KindFuncCall:
		d := node.Data.(FuncCallData)
		if err := a.attachFree(node); err != nil {
			return err
		}
		for _, arg := range d.Args {
			if err := a.walk(arg); err != nil {
				return err
			}
		}
		return nil

	case KindBuiltIn:
		for _, arg := range node.Data.(BuiltInData).Args {
			if err := a.walk(arg); err != nil {
				return err
			}
		}
		return nil

	case KindFormat:
		// A Format node owns two scratch scalars: Repr (wrapped as an
		// IndexString) holds the running begin-offset and is overwritten
		// in place with the final begin+length/9 encoding once every
		// expression has been stringified; Aux is the scratch register
		// shared by nested stringification's digit-extraction and
		// list-index loops (spec.md §4.7).
		beginTag, err := a.scalarTag()
		if err != nil {
			return err
		}
		node.Repr = IndexStringRepr(beginTag)
		scratchTag, err := a.scalarTag()
		if err != nil {
			return err
		}
		node.Aux = SimpleRepr(scratchTag)
		a.m.Scope(node.Scope).UnboundCount += 2

		for _, e := range node.Data.(FormatData).Exprs {
			if err := a.walk(e); err != nil {
				return err
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("allocating variables for unhandled kind %s", node.Kind))
	}
}

// scopeTotalVars returns the largest (bound+unbound) count over scope and
// every scope in its subtree, used to size a function's call frame.
// Grounded on original_source/src/scoper.rs::Scope::count_total_vars.
func scopeTotalVars(m *Manager, id ScopeId) int {
	s := m.Scope(id)
	best := len(s.VarNames) + s.UnboundCount
	for _, c := range s.Children {
		if t := scopeTotalVars(m, c); t > best {
			best = t
		}
	}
	return best
}
