package compiler

import (
	"fmt"

	"github.com/ha1tch/sxc/pkg/lexer"
)

// typeCheckAll assigns a result type to every node reachable from the
// top-level forms, resolving each Other node into one of {FuncCall,
// StructInit, BuiltIn} along the way. Grounded on
// original_source/src/type_checker.rs::type_check_all /
// Manager::{type_check, realize_other}.
func typeCheckAll(m *Manager) error {
	for _, id := range m.TopLevel {
		if _, err := typeCheckNode(m, id); err != nil {
			return err
		}
	}
	return nil
}

func typeCheckNode(m *Manager, id SexprId) (Type, error) {
	if err := resolveOther(m, id); err != nil {
		return Type{}, err
	}

	node := m.Node(id)
	var result Type

	switch node.Kind {
	case KindDeclare:
		d := node.Data.(DeclareData)
		exprType, err := typeCheckNode(m, d.Init)
		if err != nil {
			return Type{}, err
		}
		bodyScope := m.Scope(d.BodyScope)
		idx, _ := bodyScope.localIndex(d.Name)
		t := exprType
		bodyScope.VarTypes[idx] = &t
		bodyType, err := typeCheckNode(m, d.Body)
		if err != nil {
			return Type{}, err
		}
		result = bodyType

	case KindAssign:
		a := node.Data.(AssignData)
		scopeID, idx, ok := resolveVariable(m, node.Scope, a.Name)
		if !ok {
			panic("assign to unresolved variable escaped scoping")
		}
		varType := *m.Scope(scopeID).VarTypes[idx]
		exprType, err := typeCheckNode(m, a.Expr)
		if err != nil {
			return Type{}, err
		}
		if !varType.Equal(exprType) {
			return Type{}, NewDiagAt(fmt.Sprintf("assigning an expression of type %s to variable of type %s", exprType, varType), node.Tok)
		}
		result = varType

	case KindIfSwitch:
		d := node.Data.(IfSwitchData)
		predType, err := typeCheckNode(m, d.Pred)
		if err != nil {
			return Type{}, err
		}
		if !predType.Equal(BooleType()) {
			return Type{}, NewDiagAt(fmt.Sprintf("if condition must be of type Boole, not %s", predType), node.Tok)
		}
		thenType, err := typeCheckNode(m, d.Then)
		if err != nil {
			return Type{}, err
		}
		elseType, err := typeCheckNode(m, d.Else)
		if err != nil {
			return Type{}, err
		}
		if !thenType.Equal(elseType) {
			return Type{}, NewDiagAtMany(
				fmt.Sprintf("if branches must be of the same type: %s is not %s", thenType, elseType),
				[]lexer.Token{m.Node(d.Then).Tok, m.Node(d.Else).Tok},
			)
		}
		result = thenType

	case KindWhileLoop:
		d := node.Data.(WhileLoopData)
		predType, err := typeCheckNode(m, d.Pred)
		if err != nil {
			return Type{}, err
		}
		if !predType.Equal(BooleType()) {
			return Type{}, NewDiagAt(fmt.Sprintf("while condition must be of type Boole, not %s", predType), m.Node(d.Pred).Tok)
		}
		bodyType, err := typeCheckNode(m, d.Body)
		if err != nil {
			return Type{}, err
		}
		result = bodyType

	case KindBlock:
		result = VoidType()
		for _, s := range node.Data.(BlockData).Stmts {
			t, err := typeCheckNode(m, s)
			if err != nil {
				return Type{}, err
			}
			result = t
		}

	case KindList:
		elems := node.Data.(ListData).Elements
		if len(elems) == 0 {
			return Type{}, NewDiagAt("empty list literals are not supported", node.Tok)
		}
		first, err := typeCheckNode(m, elems[0])
		if err != nil {
			return Type{}, err
		}
		if first.Kind == TVoid {
			return Type{}, NewDiagAt("a list cannot hold Void elements", node.Tok)
		}
		for _, e := range elems[1:] {
			t, err := typeCheckNode(m, e)
			if err != nil {
				return Type{}, err
			}
			if !t.Equal(first) {
				return Type{}, NewDiagAt(fmt.Sprintf("list elements must share a type: %s is not %s", t, first), node.Tok)
			}
		}
		result = ListType(first)

	case KindListGet:
		d := node.Data.(ListGetData)
		listType, err := typeCheckNode(m, d.List)
		if err != nil {
			return Type{}, err
		}
		if listType.Kind != TList {
			return Type{}, NewDiagAt(fmt.Sprintf("get expects a list, found %s", listType), node.Tok)
		}
		idxType, err := typeCheckNode(m, d.Index)
		if err != nil {
			return Type{}, err
		}
		if !idxType.Equal(IntType()) {
			return Type{}, NewDiagAt(fmt.Sprintf("list index must be Int, not %s", idxType), node.Tok)
		}
		result = *listType.Elem

	case KindListSet:
		d := node.Data.(ListSetData)
		listType, err := typeCheckNode(m, d.List)
		if err != nil {
			return Type{}, err
		}
		if listType.Kind != TList {
			return Type{}, NewDiagAt(fmt.Sprintf("set expects a list, found %s", listType), node.Tok)
		}
		idxType, err := typeCheckNode(m, d.Index)
		if err != nil {
			return Type{}, err
		}
		if !idxType.Equal(IntType()) {
			return Type{}, NewDiagAt(fmt.Sprintf("list index must be Int, not %s", idxType), node.Tok)
		}
		elemType, err := typeCheckNode(m, d.Elem)
		if err != nil {
			return Type{}, err
		}
		if !elemType.Equal(*listType.Elem) {
			return Type{}, NewDiagAt(fmt.Sprintf("cannot store %s into a list of %s", elemType, *listType.Elem), node.Tok)
		}
		result = VoidType()

	case KindFuncDef:
		d := node.Data.(FuncDefData)
		fd := m.Func(d.FuncID)
		bodyType, err := typeCheckNode(m, fd.Body)
		if err != nil {
			return Type{}, err
		}
		if !bodyType.Equal(fd.ReturnType) {
			return Type{}, NewDiagAt(fmt.Sprintf("function %q body returns %s but declares %s", fd.Name, bodyType, fd.ReturnType), node.Tok)
		}
		result = VoidType()

	case KindStructDef:
		result = VoidType()

	case KindFuncCall:
		d := node.Data.(FuncCallData)
		result = m.Func(d.FuncID).ReturnType

	case KindStructInit:
		d := node.Data.(StructInitData)
		result = CustomType(m.Struct(d.StructID).Name, d.StructID)

	case KindStructGet:
		d := node.Data.(StructGetData)
		exprType, err := typeCheckNode(m, d.Expr)
		if err != nil {
			return Type{}, err
		}
		if exprType.Kind != TCustom {
			return Type{}, NewDiagAt(fmt.Sprintf("type %s is not a struct: cannot access field %q", exprType, d.Field), node.Tok)
		}
		sd := m.Struct(exprType.StructID)
		offset := sd.FieldOffset(d.Field)
		if offset < 0 {
			return Type{}, NewDiagAt(fmt.Sprintf("struct %q has no field %q", sd.Name, d.Field), node.Tok)
		}
		d.StructID = exprType.StructID
		node.Data = d
		result = sd.FieldTypes[offset]

	case KindStructSet:
		d := node.Data.(StructSetData)
		exprType, err := typeCheckNode(m, d.Expr)
		if err != nil {
			return Type{}, err
		}
		if exprType.Kind != TCustom {
			return Type{}, NewDiagAt(fmt.Sprintf("type %s is not a struct: cannot access field %q", exprType, d.Field), node.Tok)
		}
		sd := m.Struct(exprType.StructID)
		offset := sd.FieldOffset(d.Field)
		if offset < 0 {
			return Type{}, NewDiagAt(fmt.Sprintf("struct %q has no field %q", sd.Name, d.Field), node.Tok)
		}
		fieldType := sd.FieldTypes[offset]
		valueType, err := typeCheckNode(m, d.Value)
		if err != nil {
			return Type{}, err
		}
		if !valueType.Equal(fieldType) {
			return Type{}, NewDiagAt(fmt.Sprintf("field %q on struct %q is of type %s, not %s", d.Field, sd.Name, fieldType, valueType), node.Tok)
		}
		d.StructID = exprType.StructID
		node.Data = d
		result = VoidType()

	case KindFormat:
		for _, e := range node.Data.(FormatData).Exprs {
			if _, err := typeCheckNode(m, e); err != nil {
				return Type{}, err
			}
		}
		result = StringType()

	case KindBuiltIn:
		d := node.Data.(BuiltInData)
		result = m.Builtins[d.BuiltinID].ReturnType

	case KindIdentifier:
		name := node.Data.(IdentifierData).Name
		scopeID, idx, ok := resolveVariable(m, node.Scope, name)
		if !ok {
			panic("identifier escaped scoping unresolved: " + name)
		}
		result = *m.Scope(scopeID).VarTypes[idx]

	case KindStringLiteral:
		result = StringType()
	case KindIntegerLiteral:
		result = IntType()
	case KindRealLiteral:
		result = RealType()
	case KindBooleLiteral:
		result = BooleType()

	case KindOther:
		panic("type checking an unresolved Other node")

	default:
		panic(fmt.Sprintf("type checking unhandled kind %s", node.Kind))
	}

	node.Type = result
	return result, nil
}

// resolveOther turns a KindOther node into exactly one of {FuncCall,
// StructInit, BuiltIn}, in that priority order (first match wins). Its
// arguments are type-checked first, bottom-up.
func resolveOther(m *Manager, id SexprId) error {
	node := m.Node(id)
	if node.Kind != KindOther {
		return nil
	}
	d := node.Data.(OtherData)

	types := make([]Type, len(d.Args))
	for i, arg := range d.Args {
		t, err := typeCheckNode(m, arg)
		if err != nil {
			return err
		}
		types[i] = t
	}

	if funcID, ok := m.resolveFunc(d.Name, types); ok {
		callID := declareCallSite(m, funcID)
		node.Kind = KindFuncCall
		node.Data = FuncCallData{FuncID: funcID, CallID: callID, Args: d.Args}
		return nil
	}
	if structID, ok := m.resolveStructInit(d.Name, types); ok {
		node.Kind = KindStructInit
		node.Data = StructInitData{StructID: structID, Args: d.Args}
		return nil
	}
	if builtinID, ok := m.resolveBuiltin(d.Name, types); ok {
		node.Kind = KindBuiltIn
		node.Data = BuiltInData{BuiltinID: builtinID, Args: d.Args}
		return nil
	}
	return NewDiagAt(fmt.Sprintf("no operation found with name %q and type signature %v", d.Name, types), node.Tok)
}

// declareCallSite allocates the next dense call_id for funcID and records
// it against the declaration's running CallSites count.
func declareCallSite(m *Manager, funcID FuncDeclId) int {
	fd := m.Func(funcID)
	id := fd.CallSites
	fd.CallSites++
	return id
}
