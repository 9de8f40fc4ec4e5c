// Package carta compiles a Carta schema source into a resolved TSchema
// and applies it against binary data to produce a Nugget tree. It is
// the single public entry point; every pipeline stage (token, ast,
// typecheck, correctness, apply) lives in its own package and is wired
// together here.
package carta

import (
	"github.com/Jubulani/carta-schema/apply"
	"github.com/Jubulani/carta-schema/ast"
	"github.com/Jubulani/carta-schema/correctness"
	"github.com/Jubulani/carta-schema/internal/diag"
	"github.com/Jubulani/carta-schema/token"
	"github.com/Jubulani/carta-schema/typecheck"
)

// Nugget is re-exported so callers of ApplySchema don't need to import
// the apply package directly.
type Nugget = apply.Nugget

// TSchema is re-exported so callers can hold a compiled schema without
// importing the typecheck package directly.
type TSchema = typecheck.TSchema

// CompileSchema runs the full pipeline — tokenise, parse, typecheck,
// correctness-check — returning the first error encountered.
func CompileSchema(source string) (*TSchema, error) {
	return CompileSchemaWithTracer(source, nil)
}

// CompileSchemaWithTracer is CompileSchema with an optional structured
// tracer for diagnostics; see package diag. Passing nil behaves exactly
// like CompileSchema.
func CompileSchemaWithTracer(source string, tr *diag.Tracer) (*TSchema, error) {
	tokens, err := token.TokenizeWithTracer(source, tr)
	if err != nil {
		return nil, err
	}

	schema, err := ast.Parse(tokens)
	if err != nil {
		tr.Errorf("parse", "%s", err)
		return nil, err
	}
	tr.Stage("parse", map[string]any{"structs": len(schema.Structs)})

	tschema, err := typecheck.Check(schema)
	if err != nil {
		tr.Errorf("typecheck", "%s", err)
		return nil, err
	}
	tr.Stage("typecheck", map[string]any{"types": len(tschema.Types)})

	if err := correctness.Check(tschema); err != nil {
		tr.Errorf("correctness", "%s", err)
		return nil, err
	}
	tr.Stage("correctness", nil)

	return tschema, nil
}

// ApplySchema decodes data against schema's "root" struct, producing a
// Nugget tree. schema must come from a successful CompileSchema call.
func ApplySchema(schema *TSchema, data []byte) (*Nugget, error) {
	return apply.Apply(schema, data)
}
