package compiler

// createAllScopes builds the lexical scope tree over every top-level form,
// binding variables, functions, and structs as it goes, and checking that
// every identifier reference resolves. Grounded on
// original_source/src/scoping.rs (the newer, Manager-based dialect).
func createAllScopes(m *Manager) error {
	global := m.GlobalScope()
	for _, id := range m.TopLevel {
		if err := createScope(m, id, global); err != nil {
			return err
		}
	}
	return nil
}

func createScope(m *Manager, id SexprId, parent ScopeId) error {
	node := m.Node(id)
	node.Scope = parent

	switch node.Kind {
	case KindDeclare:
		d := node.Data.(DeclareData)
		child := m.NewScope(parent, false)
		m.Scope(child).declareVar(d.Name)
		if err := createScope(m, d.Init, parent); err != nil {
			return err
		}
		if err := createScope(m, d.Body, child); err != nil {
			return err
		}
		d.BodyScope = child
		node.Data = d

	case KindAssign:
		a := node.Data.(AssignData)
		if _, _, ok := resolveVariable(m, parent, a.Name); !ok {
			return NewDiagAt("assigning to undeclared variable `"+a.Name+"`", node.Tok)
		}
		return createScope(m, a.Expr, parent)

	case KindIfSwitch:
		d := node.Data.(IfSwitchData)
		for _, c := range []SexprId{d.Pred, d.Then, d.Else} {
			if err := createScope(m, c, parent); err != nil {
				return err
			}
		}

	case KindWhileLoop:
		d := node.Data.(WhileLoopData)
		if err := createScope(m, d.Pred, parent); err != nil {
			return err
		}
		return createScope(m, d.Body, parent)

	case KindBlock:
		for _, s := range node.Data.(BlockData).Stmts {
			if err := createScope(m, s, parent); err != nil {
				return err
			}
		}

	case KindList:
		for _, e := range node.Data.(ListData).Elements {
			if err := createScope(m, e, parent); err != nil {
				return err
			}
		}

	case KindListGet:
		d := node.Data.(ListGetData)
		if err := createScope(m, d.List, parent); err != nil {
			return err
		}
		return createScope(m, d.Index, parent)

	case KindListSet:
		d := node.Data.(ListSetData)
		if err := createScope(m, d.List, parent); err != nil {
			return err
		}
		if err := createScope(m, d.Index, parent); err != nil {
			return err
		}
		return createScope(m, d.Elem, parent)

	case KindStructGet:
		d := node.Data.(StructGetData)
		return createScope(m, d.Expr, parent)

	case KindStructSet:
		d := node.Data.(StructSetData)
		if err := createScope(m, d.Expr, parent); err != nil {
			return err
		}
		return createScope(m, d.Value, parent)

	case KindFuncDef:
		d := node.Data.(FuncDefData)
		m.Scope(parent).Funcs = append(m.Scope(parent).Funcs, d.FuncID)

		// Function bodies get an isolated root scope, not a child of the
		// enclosing scope: this enforces lexical isolation of locals from
		// the caller and underpins the flat argument-stack calling
		// convention (spec.md §4.3).
		fnScope := m.NewScope(NoScope, true)
		m.Scope(fnScope).Funcs = append(m.Scope(fnScope).Funcs, d.FuncID) // visible for self-recursion

		fd := m.Func(d.FuncID)
		for i, argName := range fd.ArgNames {
			idx := m.Scope(fnScope).declareVar(argName)
			t := fd.ArgTypes[i]
			m.Scope(fnScope).VarTypes[idx] = &t
		}
		return createScope(m, fd.Body, fnScope)

	case KindStructDef:
		d := node.Data.(StructDefData)
		m.Scope(parent).Structs = append(m.Scope(parent).Structs, d.StructID)

	case KindFormat:
		for _, e := range node.Data.(FormatData).Exprs {
			if err := createScope(m, e, parent); err != nil {
				return err
			}
		}

	case KindOther:
		for _, a := range node.Data.(OtherData).Args {
			if err := createScope(m, a, parent); err != nil {
				return err
			}
		}

	case KindIdentifier:
		name := node.Data.(IdentifierData).Name
		if _, _, ok := resolveVariable(m, parent, name); !ok {
			return NewDiagAt("undeclared variable `"+name+"`", node.Tok)
		}

	case KindFuncCall, KindStructInit, KindBuiltIn:
		panic("scoping a node kind that should not exist before type checking")

	default:
		// StringLiteral, IntegerLiteral, RealLiteral, BooleLiteral: leaves.
	}
	return nil
}

// resolveVariable walks from start toward the root looking for name,
// returning the scope it is bound in and its local index. Function-body
// scopes are roots (Parent == NoScope), so this walk naturally stops at a
// function boundary without any special-case check.
func resolveVariable(m *Manager, start ScopeId, name string) (ScopeId, int, bool) {
	for sc := start; sc != NoScope; sc = m.Scope(sc).Parent {
		if idx, ok := m.Scope(sc).localIndex(name); ok {
			return sc, idx, true
		}
	}
	return NoScope, 0, false
}
