package compiler

// initializeTypeInfo promotes every Future type captured during parsing —
// struct field types and function argument/return types — into a concrete
// Type, now that every struct declaration has been registered. Grounded on
// original_source/src/manager.rs::Manager::initialize_type_info.
func initializeTypeInfo(m *Manager) error {
	for i := range m.Structs {
		s := &m.Structs[i]
		for j, t := range s.FieldTypes {
			resolved, err := resolveFutureType(m, t)
			if err != nil {
				return err
			}
			s.FieldTypes[j] = resolved
		}
	}
	for i := range m.Funcs {
		f := &m.Funcs[i]
		for j, t := range f.ArgTypes {
			resolved, err := resolveFutureType(m, t)
			if err != nil {
				return err
			}
			f.ArgTypes[j] = resolved
		}
		resolved, err := resolveFutureType(m, f.ReturnType)
		if err != nil {
			return err
		}
		f.ReturnType = resolved
	}
	return nil
}

func resolveFutureType(m *Manager, t Type) (Type, error) {
	if !t.IsFuture() {
		return t, nil
	}
	if prim, ok := primitiveTypeByName(t.Name); ok {
		return prim, nil
	}
	if id, ok := m.LookupStructByName(t.Name); ok {
		return CustomType(t.Name, id), nil
	}
	return Type{}, NewDiagAt("unknown type name: "+t.Name, t.FutureTok)
}
