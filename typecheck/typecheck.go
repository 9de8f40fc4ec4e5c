// Package typecheck resolves an ast.Schema's flat struct list into a
// name-keyed TSchema, rejecting duplicate names, references to unknown
// types, and types that recursively depend on themselves.
package typecheck

import (
	"github.com/Jubulani/carta-schema/ast"
	"github.com/Jubulani/carta-schema/builtin"
	"github.com/Jubulani/carta-schema/cartaerr"
)

// TSchema is a Schema after name resolution: every struct is reachable
// by name, and Check has already guaranteed every element type name is
// either a builtin or a key of Types.
type TSchema struct {
	Types map[string]*ast.StructDefn
}

// Check builds a TSchema from schema, or the first error encountered in
// this order: a duplicate struct name, a reference to an unknown type,
// then a recursive type dependency.
func Check(schema *ast.Schema) (*TSchema, error) {
	types, err := buildStructsMap(schema)
	if err != nil {
		return nil, err
	}
	if err := checkAllTypesDefined(types); err != nil {
		return nil, err
	}
	if err := checkTypesNoLoops(types); err != nil {
		return nil, err
	}
	return &TSchema{Types: types}, nil
}

func buildStructsMap(schema *ast.Schema) (map[string]*ast.StructDefn, error) {
	types := make(map[string]*ast.StructDefn, len(schema.Structs))
	for i := range schema.Structs {
		sd := &schema.Structs[i]
		if _, ok := types[sd.Name]; ok {
			return nil, cartaerr.New(sd.Line, cartaerr.DuplicateType{Name: sd.Name})
		}
		types[sd.Name] = sd
	}
	return types, nil
}

// elemTypeName extracts the type name an element references, whether it
// is a bare type or the element type of an array.
func elemTypeName(elem ast.Element) string {
	switch k := elem.Kind.(type) {
	case ast.TypeName:
		return k.Name
	case ast.ArrayElem:
		return k.ElementType
	default:
		panic("typecheck: unknown ast.ElementKind")
	}
}

func checkAllTypesDefined(types map[string]*ast.StructDefn) error {
	for _, sd := range types {
		for _, elem := range sd.Elements {
			typename := elemTypeName(elem)
			if builtin.IsBuiltin(typename) {
				continue
			}
			if _, ok := types[typename]; !ok {
				return cartaerr.New(elem.Line, cartaerr.UnknownType{Name: typename})
			}
		}
	}
	return nil
}

// checkTypesNoLoops runs a reverse-dependency toposort: a type is
// "resolved" once every element it references is either a builtin or
// already resolved. Types that depend on an unresolved type are queued
// as that type's dependants, and re-examined once it resolves. Anything
// left unresolved once the stack drains is either on a cycle or depends
// on a type that is.
func checkTypesNoLoops(types map[string]*ast.StructDefn) error {
	resolved := make(map[string]struct{}, len(types))
	dependants := make(map[string][]string)
	var stack []string

	for name, sd := range types {
		allBuiltin := true
		for _, elem := range sd.Elements {
			typename := elemTypeName(elem)
			if builtin.IsBuiltin(typename) {
				continue
			}
			if _, ok := resolved[typename]; ok {
				continue
			}
			allBuiltin = false
			dependants[typename] = append(dependants[typename], name)
		}
		if allBuiltin {
			resolved[name] = struct{}{}
			stack = append(stack, name)
		}
	}

	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, parentName := range dependants[name] {
			parent, ok := types[parentName]
			if !ok {
				panic("typecheck: unresolved type " + parentName)
			}

			allResolved := true
			for _, elem := range parent.Elements {
				typename := elemTypeName(elem)
				if builtin.IsBuiltin(typename) {
					continue
				}
				if _, ok := resolved[typename]; !ok {
					allResolved = false
					break
				}
			}

			if allResolved {
				if _, already := resolved[parentName]; !already {
					resolved[parentName] = struct{}{}
					stack = append(stack, parentName)
				}
			}
		}
	}

	var recursive []string
	line := -1
	for name, sd := range types {
		if _, ok := resolved[name]; ok {
			continue
		}
		recursive = append(recursive, name)
		if line == -1 || sd.Line < line {
			line = sd.Line
		}
	}
	if len(recursive) > 0 {
		return cartaerr.New(line, cartaerr.RecursiveTypes{Names: recursive})
	}
	return nil
}
