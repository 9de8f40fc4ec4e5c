// Package ast holds the parser's output: an ordered Schema of StructDefns,
// each with an ordered list of Elements, exactly as written in the source
// (no type resolution has happened yet — that's the typecheck package's
// job).
package ast

// Schema is an ordered sequence of struct definitions, in source order.
type Schema struct {
	Structs []StructDefn
}

// StructDefn is a named, ordered sequence of elements.
type StructDefn struct {
	Name     string
	Line     int
	Elements []Element
}

// Element is a named field inside a struct.
type Element struct {
	Name string
	Line int
	Kind ElementKind
}

// ElementKind is the tagged variant of an element's type: either a bare
// type reference (TypeName) or an array of one (ArrayElem).
type ElementKind interface {
	isElementKind()
}

// TypeName names a built-in or user-defined struct type.
type TypeName struct {
	Name string
}

func (TypeName) isElementKind() {}

// ArrayElem is an array of element_kind, with a length resolved either
// from an integer literal or from a preceding sibling field.
type ArrayElem struct {
	ElementType string
	Length      Length
}

func (ArrayElem) isElementKind() {}

// Length is the tagged variant of an array's length: a compile-time
// constant, or a reference to a sibling field resolved at apply time.
type Length interface {
	isLength()
}

// StaticLength is a fixed array length known at compile time.
type StaticLength struct {
	N uint32
}

func (StaticLength) isLength() {}

// IdentifierLength names an earlier sibling field whose decoded value
// gives the array's length at apply time.
type IdentifierLength struct {
	Name string
}

func (IdentifierLength) isLength() {}
