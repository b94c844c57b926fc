package vir

// TypeKind discriminates IVL types.
type TypeKind int

const (
	KindInt TypeKind = iota
	KindBool
	KindRef
	KindPerm
	KindDomain
)

// Type is an IVL type. Domain types are identified by name.
type Type struct {
	Kind TypeKind
	Name string
}

var (
	TypeInt  = Type{Kind: KindInt}
	TypeBool = Type{Kind: KindBool}
	TypeRef  = Type{Kind: KindRef}
	TypePerm = Type{Kind: KindPerm}
)

// DomainType returns the type of values of domain name.
func DomainType(name string) Type { return Type{Kind: KindDomain, Name: name} }

// String renders the type in Viper syntax.
func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindRef:
		return "Ref"
	case KindPerm:
		return "Perm"
	default:
		return t.Name
	}
}
