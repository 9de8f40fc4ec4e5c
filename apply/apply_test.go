package apply

import (
	"strconv"
	"testing"

	"github.com/Jubulani/carta-schema/ast"
	"github.com/Jubulani/carta-schema/cartaerr"
	"github.com/Jubulani/carta-schema/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeElem(name, typename string) ast.Element {
	return ast.Element{Name: name, Kind: ast.TypeName{Name: typename}}
}

func schemaOf(structs ...ast.StructDefn) *typecheck.TSchema {
	types := make(map[string]*ast.StructDefn, len(structs))
	for i := range structs {
		types[structs[i].Name] = &structs[i]
	}
	return &typecheck.TSchema{Types: types}
}

func value(n *Nugget) string {
	if n.Value == nil {
		return ""
	}
	return *n.Value
}

func TestApplyFlatStructOfBytes(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("val1", "int8"), typeElem("val2", "int8"), typeElem("val3", "int8"),
	}})
	root, err := Apply(schema, []byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, 0, root.Start)
	assert.Equal(t, 3, root.Len)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "0", value(&root.Children[0]))
	assert.Equal(t, "1", value(&root.Children[1]))
	assert.Equal(t, "2", value(&root.Children[2]))
}

func TestApplyMixedWidthStruct(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("val1", "int8"), typeElem("val2", "int16_le"), typeElem("val3", "int8"),
	}})
	root, err := Apply(schema, []byte{0x00, 0x01, 0x00, 0x02})
	require.NoError(t, err)
	assert.Equal(t, "1", value(&root.Children[1]))
	assert.Equal(t, 2, root.Children[1].Len)
	assert.Equal(t, 4, root.Len)
}

func TestApplyNestedStructs(t *testing.T) {
	schema := schemaOf(
		ast.StructDefn{Name: "root", Elements: []ast.Element{
			typeElem("version1", "Version"), typeElem("version2", "Version"),
		}},
		ast.StructDefn{Name: "Version", Elements: []ast.Element{
			typeElem("major", "int8"), typeElem("minor", "int8"),
		}},
	)
	root, err := Apply(schema, []byte{0x00, 0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	v1, v2 := root.Children[0], root.Children[1]
	assert.Equal(t, 2, v1.Len)
	assert.Equal(t, 2, v2.Len)
	assert.Equal(t, "0", value(&v1.Children[0]))
	assert.Equal(t, "1", value(&v1.Children[1]))
	assert.Equal(t, "2", value(&v2.Children[0]))
	assert.Equal(t, "3", value(&v2.Children[1]))
}

func TestApplyIdentifierLengthArray(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("len", "int8"),
		{Name: "arr", Kind: ast.ArrayElem{ElementType: "uint8", Length: ast.IdentifierLength{Name: "len"}}},
	}})

	root, err := Apply(schema, []byte{0x02, 0x00, 0x01})
	require.NoError(t, err)
	arr := root.Children[1]
	require.Len(t, arr.Children, 2)
	assert.Equal(t, "0", value(&arr.Children[0]))
	assert.Equal(t, "1", value(&arr.Children[1]))
	assert.Equal(t, 2, arr.Len)
	assert.Nil(t, arr.Value)
}

func TestApplyZeroLengthArray(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("len", "int8"),
		{Name: "arr", Kind: ast.ArrayElem{ElementType: "uint8", Length: ast.IdentifierLength{Name: "len"}}},
	}})

	root, err := Apply(schema, []byte{0x00})
	require.NoError(t, err)
	arr := root.Children[1]
	assert.Empty(t, arr.Children)
	assert.Equal(t, 0, arr.Len)
	assert.Equal(t, 1, root.Len)
}

func TestApplyAsciiArrayConcatenation(t *testing.T) {
	schema := schemaOf(
		ast.StructDefn{Name: "root", Elements: []ast.Element{typeElem("name", "String")}},
		ast.StructDefn{Name: "String", Elements: []ast.Element{
			typeElem("len", "int8"),
			{Name: "value", Kind: ast.ArrayElem{ElementType: "ascii", Length: ast.IdentifierLength{Name: "len"}}},
		}},
	)
	root, err := Apply(schema, []byte{0x04, 'a', 'b', 'c', 'd'})
	require.NoError(t, err)
	str := root.Children[0]
	arr := str.Children[1]
	require.Len(t, arr.Children, 4)
	got := ""
	for _, c := range arr.Children {
		got += value(&c)
	}
	assert.Equal(t, "abcd", got)
}

func TestApplyStaticArrayLength(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		{Name: "arr", Kind: ast.ArrayElem{ElementType: "uint8", Length: ast.StaticLength{N: 3}}},
	}})
	root, err := Apply(schema, []byte{9, 8, 7})
	require.NoError(t, err)
	assert.Len(t, root.Children[0].Children, 3)
}

func TestApplyTruncatedInput(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("val1", "int32_be"),
	}})
	_, err := Apply(schema, []byte{0x00, 0x01})
	require.Error(t, err)
	cErr := err.(*cartaerr.Error)
	assert.IsType(t, cartaerr.TruncatedInput{}, cErr.Code)
}

func TestApplyTruncatedArrayLength(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("len", "int8"),
		{Name: "arr", Kind: ast.ArrayElem{ElementType: "uint32_be", Length: ast.IdentifierLength{Name: "len"}}},
	}})
	_, err := Apply(schema, []byte{0x05, 0x00})
	require.Error(t, err)
	cErr := err.(*cartaerr.Error)
	assert.IsType(t, cartaerr.TruncatedInput{}, cErr.Code)
}

func TestApplyDeterminism(t *testing.T) {
	schema := schemaOf(ast.StructDefn{Name: "root", Elements: []ast.Element{
		typeElem("val1", "int8"), typeElem("val2", "int16_le"),
	}})
	data := []byte{0x01, 0x02, 0x03}
	a, err := Apply(schema, data)
	require.NoError(t, err)
	b, err := Apply(schema, data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestApplyRecursionLimit(t *testing.T) {
	structs := make([]ast.StructDefn, 0, maxDepth+10)
	structs = append(structs, ast.StructDefn{Name: "root", Elements: []ast.Element{typeElem("next", "s1")}})
	for i := 1; i <= maxDepth+5; i++ {
		name := "s" + strconv.Itoa(i)
		next := "s" + strconv.Itoa(i+1)
		structs = append(structs, ast.StructDefn{Name: name, Elements: []ast.Element{typeElem("next", next)}})
	}
	structs = append(structs, ast.StructDefn{Name: "s" + strconv.Itoa(maxDepth+6), Elements: []ast.Element{typeElem("v", "int8")}})

	schema := schemaOf(structs...)
	data := make([]byte, 1)
	_, err := Apply(schema, data)
	require.Error(t, err)
	cErr := err.(*cartaerr.Error)
	assert.IsType(t, cartaerr.RecursionLimit{}, cErr.Code)
}

func TestApplyFullCoverageNoOverlap(t *testing.T) {
	schema := schemaOf(
		ast.StructDefn{Name: "root", Elements: []ast.Element{
			typeElem("a", "int8"), typeElem("b", "Inner"), typeElem("c", "int16_le"),
		}},
		ast.StructDefn{Name: "Inner", Elements: []ast.Element{typeElem("x", "int8")}},
	)
	data := []byte{1, 2, 3, 4}
	root, err := Apply(schema, data)
	require.NoError(t, err)

	assert.Equal(t, 0, root.Start)
	assert.Equal(t, len(data), root.Len)

	offset := 0
	for _, c := range root.Children {
		assert.Equal(t, root.Start+offset, c.Start)
		offset += c.Len
	}
	assert.Equal(t, root.Len, offset)
}
