// Package apply is Carta's interpreter: it walks a resolved schema
// alongside a byte slice, decoding each element in turn and assembling
// the result into a tree of Nuggets.
package apply

import (
	"strconv"

	"github.com/Jubulani/carta-schema/ast"
	"github.com/Jubulani/carta-schema/builtin"
	"github.com/Jubulani/carta-schema/cartaerr"
	"github.com/Jubulani/carta-schema/typecheck"
)

// maxDepth caps struct/array nesting reachable while applying a schema,
// guarding against adversarially deep (but otherwise valid) schemas.
const maxDepth = 4096

// Nugget is one decoded span of the input: a leaf carries a display
// Value, an interior node carries Children whose spans tile its own.
type Nugget struct {
	Start    int
	Len      int
	Name     string
	Value    *string
	Children []Nugget
}

// Apply decodes bytes against schema, starting from its "root" struct.
// schema must already have passed correctness.Check, which guarantees
// "root" exists and every array length reference is well-formed.
func Apply(schema *typecheck.TSchema, data []byte) (*Nugget, error) {
	root, ok := schema.Types["root"]
	if !ok {
		panic("apply: schema missing root struct, correctness.Check was skipped")
	}
	b := &builder{schema: schema, data: data}
	return b.buildStruct(0, root, "root", 1)
}

type builder struct {
	schema *typecheck.TSchema
	data   []byte
}

func (b *builder) buildStruct(start int, defn *ast.StructDefn, name string, depth int) (*Nugget, error) {
	if depth > maxDepth {
		return nil, cartaerr.New(defn.Line, cartaerr.RecursionLimit{})
	}

	node := &Nugget{Start: start, Name: name}
	offset := 0

	for _, elem := range defn.Elements {
		child, err := b.buildElement(start+offset, elem, depth, node.Children)
		if err != nil {
			return nil, err
		}
		offset += child.Len
		node.Children = append(node.Children, *child)
	}

	node.Len = offset
	return node, nil
}

// buildElement dispatches on an element's kind. siblings is the list of
// already-emitted children in the enclosing struct, used to resolve
// identifier array lengths.
func (b *builder) buildElement(start int, elem ast.Element, depth int, siblings []Nugget) (*Nugget, error) {
	switch kind := elem.Kind.(type) {
	case ast.TypeName:
		return b.buildTypeName(start, elem.Name, kind.Name, elem.Line, depth)
	case ast.ArrayElem:
		return b.buildArray(start, elem.Name, kind, elem.Line, depth, siblings)
	default:
		panic("apply: unknown ast.ElementKind")
	}
}

// buildTypeName builds the Nugget for a single bare-typed element,
// whether it's a built-in leaf or a nested struct.
func (b *builder) buildTypeName(start int, name, typeName string, line, depth int) (*Nugget, error) {
	if builtin.IsBuiltin(typeName) {
		return b.buildLeaf(start, name, typeName, line)
	}

	defn, ok := b.schema.Types[typeName]
	if !ok {
		panic("apply: unresolved type name " + typeName + ", typecheck.Check was skipped")
	}
	return b.buildStruct(start, defn, name, depth+1)
}

func (b *builder) buildLeaf(start int, name, typeName string, line int) (*Nugget, error) {
	size := builtin.Size(typeName)
	if start < 0 || start+size > len(b.data) {
		return nil, cartaerr.New(line, cartaerr.TruncatedInput{})
	}
	_, value := builtin.Decode(b.data[start:], typeName)
	return &Nugget{Start: start, Len: size, Name: name, Value: &value}, nil
}

func (b *builder) buildArray(start int, name string, defn ast.ArrayElem, line, depth int, siblings []Nugget) (*Nugget, error) {
	count, err := b.resolveLength(defn.Length, line, siblings)
	if err != nil {
		return nil, err
	}

	node := &Nugget{Start: start, Name: name}
	offset := 0
	for i := 0; i < count; i++ {
		child, err := b.buildTypeName(start+offset, strconv.Itoa(i), defn.ElementType, line, depth+1)
		if err != nil {
			return nil, err
		}
		offset += child.Len
		node.Children = append(node.Children, *child)
	}
	node.Len = offset
	return node, nil
}

// resolveLength turns an ast.Length into a concrete element count. An
// Identifier length is resolved by a linear scan over the siblings
// already decoded in the enclosing struct, reading the Nugget's decoded
// Value back as a decimal non-negative integer (correctness guarantees
// the referenced sibling is a preceding built-in integer field).
func (b *builder) resolveLength(length ast.Length, line int, siblings []Nugget) (int, error) {
	switch l := length.(type) {
	case ast.StaticLength:
		return int(l.N), nil
	case ast.IdentifierLength:
		for i := len(siblings) - 1; i >= 0; i-- {
			if siblings[i].Name != l.Name {
				continue
			}
			n, err := strconv.ParseUint(*siblings[i].Value, 10, 64)
			if err != nil {
				// The referenced field decoded to a negative number; there
				// is no valid non-negative count to use.
				return 0, cartaerr.New(line, cartaerr.TruncatedInput{})
			}
			if n > uint64(len(b.data)) {
				return 0, cartaerr.New(line, cartaerr.TruncatedInput{})
			}
			return int(n), nil
		}
		panic("apply: unresolved array length identifier " + l.Name + ", correctness.Check was skipped")
	default:
		panic("apply: unknown ast.Length")
	}
}
