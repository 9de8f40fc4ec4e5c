package ast

import (
	"github.com/Jubulani/carta-schema/cartaerr"
	"github.com/Jubulani/carta-schema/token"
)

// Parse turns a flat token sequence into a Schema. Newlines carry no
// grammatical meaning anywhere in a struct definition; they are skipped
// wherever they appear once a struct body has opened, and at the top
// level between struct definitions.
func Parse(tokens []token.Token) (*Schema, error) {
	p := &parser{tokens: tokens}
	return p.parseSchema()
}

type parser struct {
	tokens   []token.Token
	pos      int
	lastLine int
}

// peek returns the next token without consuming it. ok is false at end
// of input.
func (p *parser) peek() (token.Token, bool) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) advance() token.Token {
	t := p.tokens[p.pos]
	p.lastLine = t.Line
	p.pos++
	return t
}

func (p *parser) skipNewlines() {
	for {
		t, ok := p.peek()
		if !ok || t.Kind != token.NewLine {
			return
		}
		p.advance()
	}
}

func incomplete(line int) error {
	return cartaerr.New(line, cartaerr.IncompleteInput{})
}

func parseError(tok token.Token, expected string) error {
	return cartaerr.New(tok.Line, cartaerr.ParseError{Expected: expected, Got: tok.Describe()})
}

func (p *parser) parseSchema() (*Schema, error) {
	schema := &Schema{}
	for {
		p.skipNewlines()
		tok, ok := p.peek()
		if !ok {
			return schema, nil
		}
		if tok.Kind != token.Word || tok.Text() != "struct" {
			return nil, parseError(tok, "struct")
		}
		p.advance()

		sd, err := p.parseStruct()
		if err != nil {
			return nil, err
		}
		schema.Structs = append(schema.Structs, *sd)
	}
}

// parseStruct parses a struct's name, '{', elements and closing '}'. The
// leading "struct" keyword has already been consumed.
func (p *parser) parseStruct() (*StructDefn, error) {
	p.skipNewlines()
	nameTok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if nameTok.Kind != token.Word {
		return nil, parseError(nameTok, "<struct name>")
	}
	p.advance()

	p.skipNewlines()
	brace, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if brace.Kind != token.OpenBrace {
		return nil, parseError(brace, "{")
	}
	p.advance()

	sd := &StructDefn{Name: nameTok.Text(), Line: nameTok.Line}

	for {
		p.skipNewlines()
		tok, ok := p.peek()
		if !ok {
			return nil, incomplete(p.lastLine)
		}
		if tok.Kind == token.CloseBrace {
			p.advance()
			return sd, nil
		}

		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		sd.Elements = append(sd.Elements, *elem)

		p.skipNewlines()
		sep, ok := p.peek()
		if !ok {
			return nil, incomplete(p.lastLine)
		}
		switch sep.Kind {
		case token.Comma:
			p.advance()
		case token.CloseBrace:
			// allow a trailing comma to be omitted on the last element
		default:
			return nil, parseError(sep, ", or }")
		}
	}
}

// parseElement parses a single "name: type" pair, where type is either a
// bare type name or an array declaration.
func (p *parser) parseElement() (*Element, error) {
	nameTok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if nameTok.Kind != token.Word {
		return nil, parseError(nameTok, "<field name>")
	}
	p.advance()

	p.skipNewlines()
	colon, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if colon.Kind != token.Colon {
		return nil, parseError(colon, ":")
	}
	p.advance()

	p.skipNewlines()
	kind, err := p.parseElementKind()
	if err != nil {
		return nil, err
	}

	return &Element{Name: nameTok.Text(), Line: nameTok.Line, Kind: kind}, nil
}

// parseElementKind parses either a bare type name or a "[type; length]"
// array declaration.
func (p *parser) parseElementKind() (ElementKind, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}

	if tok.Kind == token.Word {
		p.advance()
		return TypeName{Name: tok.Text()}, nil
	}

	if tok.Kind != token.OpenBracket {
		return nil, parseError(tok, "<type name> or [")
	}
	p.advance()
	return p.parseArrayDefn()
}

// parseArrayDefn parses "type; length]", with the opening '[' already
// consumed.
func (p *parser) parseArrayDefn() (ElementKind, error) {
	p.skipNewlines()
	elemTok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if elemTok.Kind != token.Word {
		return nil, parseError(elemTok, "<element type>")
	}
	p.advance()

	p.skipNewlines()
	semi, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if semi.Kind != token.Semicolon {
		return nil, parseError(semi, ";")
	}
	p.advance()

	p.skipNewlines()
	length, err := p.parseLength()
	if err != nil {
		return nil, err
	}

	p.skipNewlines()
	closeTok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	if closeTok.Kind != token.CloseBracket {
		return nil, parseError(closeTok, "]")
	}
	p.advance()

	return ArrayElem{ElementType: elemTok.Text(), Length: length}, nil
}

func (p *parser) parseLength() (Length, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, incomplete(p.lastLine)
	}
	switch tok.Kind {
	case token.Integer:
		p.advance()
		return StaticLength{N: tok.Int()}, nil
	case token.Word:
		p.advance()
		return IdentifierLength{Name: tok.Text()}, nil
	default:
		return nil, parseError(tok, "<integer> or <field name>")
	}
}
