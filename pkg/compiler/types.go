package compiler

import "github.com/ha1tch/sxc/pkg/lexer"

// TypeKind discriminates Type's variant.
type TypeKind int

const (
	TString TypeKind = iota
	TInt
	TReal
	TBoole
	TVoid
	TList
	TCustom
	// TFuture holds an unresolved type-name token captured at parse time;
	// initializeTypeInfo promotes every TFuture to a concrete kind once all
	// struct declarations are known.
	TFuture
)

func (k TypeKind) String() string {
	switch k {
	case TString:
		return "String"
	case TInt:
		return "Int"
	case TReal:
		return "Real"
	case TBoole:
		return "Boole"
	case TVoid:
		return "Void"
	case TList:
		return "List"
	case TCustom:
		return "Custom"
	case TFuture:
		return "Future"
	default:
		return "?"
	}
}

// Type is a sum of {String, Int, Real, Boole, Void, List<Type>,
// Custom(name, struct_id)}, plus the transient Future placeholder.
// Equality is structural; two Custom types are equal iff their StructID
// fields are equal — Name is for display only and never compared.
type Type struct {
	Kind      TypeKind
	Elem      *Type        // set when Kind == TList
	StructID  StructDeclId // set when Kind == TCustom
	Name      string       // display name for TCustom; token text for TFuture
	FutureTok lexer.Token  // set when Kind == TFuture
}

func (t Type) String() string {
	switch t.Kind {
	case TList:
		if t.Elem != nil {
			return "List<" + t.Elem.String() + ">"
		}
		return "List<?>"
	case TCustom:
		return t.Name
	case TFuture:
		return "future(" + t.Name + ")"
	default:
		return t.Kind.String()
	}
}

// Equal reports structural type equality, per the data model's rule that
// Custom types compare only by StructID.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case TList:
		if t.Elem == nil || u.Elem == nil {
			return t.Elem == u.Elem
		}
		return t.Elem.Equal(*u.Elem)
	case TCustom:
		return t.StructID == u.StructID
	default:
		return true
	}
}

func (t Type) IsFuture() bool { return t.Kind == TFuture }

// Convenience constructors.

func VoidType() Type   { return Type{Kind: TVoid} }
func StringType() Type { return Type{Kind: TString} }
func IntType() Type    { return Type{Kind: TInt} }
func RealType() Type   { return Type{Kind: TReal} }
func BooleType() Type  { return Type{Kind: TBoole} }

func ListType(elem Type) Type {
	e := elem
	return Type{Kind: TList, Elem: &e}
}

func CustomType(name string, id StructDeclId) Type {
	return Type{Kind: TCustom, Name: name, StructID: id}
}

func FutureType(name string, tok lexer.Token) Type {
	return Type{Kind: TFuture, Name: name, FutureTok: tok}
}

// primitiveTypeByName maps a type-annotation token's text to a concrete
// primitive Type. Struct names are resolved separately, against the
// Manager's registered StructDecls.
func primitiveTypeByName(name string) (Type, bool) {
	switch name {
	case "string", "String":
		return StringType(), true
	case "int", "Int":
		return IntType(), true
	case "real", "Real":
		return RealType(), true
	case "boole", "Boole", "bool", "Bool":
		return BooleType(), true
	case "void", "Void":
		return VoidType(), true
	default:
		return Type{}, false
	}
}
