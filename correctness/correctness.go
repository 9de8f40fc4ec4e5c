// Package correctness runs the static checks that the typechecker's
// toposort leaves to a later pass: that a "root" struct exists, and that
// every array's dynamic length reference names a preceding sibling of a
// built-in integer type.
package correctness

import (
	"github.com/Jubulani/carta-schema/ast"
	"github.com/Jubulani/carta-schema/builtin"
	"github.com/Jubulani/carta-schema/cartaerr"
	"github.com/Jubulani/carta-schema/typecheck"
)

// Check runs every static check against a resolved schema.
func Check(schema *typecheck.TSchema) error {
	if err := checkRootElement(schema); err != nil {
		return err
	}
	return checkArrayLengths(schema)
}

func checkRootElement(schema *typecheck.TSchema) error {
	if _, ok := schema.Types["root"]; !ok {
		return cartaerr.New(0, cartaerr.MissingRootElement{})
	}
	return nil
}

// checkArrayLengths scans every struct's elements for identifier-length
// arrays and verifies the referenced name is a strictly preceding
// sibling that decodes to an integer.
func checkArrayLengths(schema *typecheck.TSchema) error {
	for _, sd := range schema.Types {
		for i, elem := range sd.Elements {
			array, ok := elem.Kind.(ast.ArrayElem)
			if !ok {
				continue
			}
			id, ok := array.Length.(ast.IdentifierLength)
			if !ok {
				continue
			}

			sibling, found := findPrecedingSibling(sd.Elements[:i], id.Name)
			if !found {
				return cartaerr.New(elem.Line, cartaerr.BadArrayLen{Name: id.Name})
			}

			typeName, ok := sibling.Kind.(ast.TypeName)
			if !ok || !builtin.IsClass(typeName.Name, builtin.Integer) {
				return cartaerr.New(elem.Line, cartaerr.BadArrayLenType{Name: id.Name})
			}
		}
	}
	return nil
}

func findPrecedingSibling(elements []ast.Element, name string) (ast.Element, bool) {
	for _, e := range elements {
		if e.Name == name {
			return e, true
		}
	}
	return ast.Element{}, false
}
