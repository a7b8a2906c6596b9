// Package surface defines the capability interface that the analyzer and
// transformer use to walk a parsed class (spec §9: "the analyzer and
// transformer consume the parsed tree only through a small capability
// interface ... so a systems-language port may substitute any compatible
// parser without disturbing the rest of the pipeline"). internal/parser
// is the one concrete producer shipped in this repo; any other producer
// of the same interface works unmodified with the rest of the pipeline.
package surface

// NodeKind mirrors the getKind() capability.
type NodeKind int

const (
	KindClass NodeKind = iota
	KindField
	KindMethod
	KindParam
	KindDecorator
	KindEvent
	KindEnum
	KindStruct
	KindInterface
)

// Decorator is a parsed `@name(args...)` annotation or a bare `@name`.
type Decorator struct {
	Name string
	Args []string
}

func HasDecorator(ds []Decorator, name string) bool {
	for _, d := range ds {
		if d.Name == name {
			return true
		}
	}
	return false
}

func FindDecorator(ds []Decorator, name string) (Decorator, bool) {
	for _, d := range ds {
		if d.Name == name {
			return d, true
		}
	}
	return Decorator{}, false
}

// TypeRef is the raw, unresolved spelling of a type as written in source;
// internal/evmtype.Parse turns it into an EvmType.
type TypeRef struct {
	Spelling string
}

// Param is a method/function parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Property is a class field (getProperties() capability).
type Property struct {
	Name        string
	Type        TypeRef
	Decorators  []Decorator
	Initializer Expr // nil if none
}

func (Property) Kind() NodeKind { return KindField }

// Method is a class method or constructor (getMethods() capability).
type Method struct {
	Name          string
	Params        []Param
	ReturnType    *TypeRef // nil if void
	Decorators    []Decorator
	Body          []Stmt
	IsConstructor bool
	IsPrivateKW   bool // `private` visibility keyword, distinct from @internal
}

func (Method) Kind() NodeKind { return KindMethod }

// Class is a parsed class declaration (getClasses() capability).
type Class struct {
	Name       string
	Mixins     []string // base names from `extends Mixin(A, B, C)`, in order
	Properties []Property
	Methods    []Method
	Decorators []Decorator
	Exported   bool
}

func (Class) Kind() NodeKind { return KindClass }

// EventField describes one field of an event schema.
type EventField struct {
	Name    string
	Type    TypeRef
	Indexed bool
}

// EventSchema is an `event Name { ... }` declaration used as an `@event`
// field's type.
type EventSchema struct {
	Name   string
	Fields []EventField
}

// EnumDecl is a parameterless enum type declaration.
type EnumDecl struct {
	Name   string
	Values []string
}

// StructDecl is a parameterless, field-only type declaration (spec §9:
// "Structs (field-only interfaces) are lowered as uint256 slot references").
type StructDecl struct {
	Name   string
	Fields []Param
}

// InterfaceDecl models `interface I { method(...): T }` used for typed
// external calls `I(addr).method(...)`.
type InterfaceDecl struct {
	Name    string
	Methods []Method
}

// Program is the root of the parsed tree: zero or more classes (spec
// targets a single exported class per file, enforced by the analyzer, not
// the parser) plus the type declarations referenced by them.
type Program struct {
	Classes    []Class
	Events     map[string]EventSchema
	Enums      map[string]EnumDecl
	Structs    map[string]StructDecl
	Interfaces map[string]InterfaceDecl
}

func NewProgram() *Program {
	return &Program{
		Events:     map[string]EventSchema{},
		Enums:      map[string]EnumDecl{},
		Structs:    map[string]StructDecl{},
		Interfaces: map[string]InterfaceDecl{},
	}
}

// ExportedClass returns the single exported class, per spec §1 ("a single
// exported class is interpreted as a smart contract").
func (p *Program) ExportedClass() (*Class, bool) {
	for i := range p.Classes {
		if p.Classes[i].Exported {
			return &p.Classes[i], true
		}
	}
	return nil, false
}
