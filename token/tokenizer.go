package token

import (
	"strings"

	"github.com/Jubulani/carta-schema/cartaerr"
	"github.com/Jubulani/carta-schema/internal/diag"
)

// Tokenize scans source into a flat token sequence. It is restartable
// (calling it again on the same text re-scans from the start) but each
// returned slice is only ever produced once.
func Tokenize(source string) ([]Token, error) {
	return TokenizeWithTracer(source, nil)
}

// TokenizeWithTracer is Tokenize with an optional structured tracer for
// diagnostics; see package diag.
func TokenizeWithTracer(source string, tr *diag.Tracer) ([]Token, error) {
	s := &scanner{runes: []rune(source), line: 1}
	tr.Stage("tokenize", map[string]any{"runes": len(s.runes)})
	for s.pos < len(s.runes) {
		if err := s.step(); err != nil {
			tr.Errorf("tokenize", "%s", err)
			return nil, err
		}
	}
	return s.tokens, nil
}

type scanner struct {
	runes  []rune
	pos    int
	line   int
	tokens []Token
}

func (s *scanner) emit(kind Kind, line int, value any) {
	s.tokens = append(s.tokens, Token{Kind: kind, Line: line, Value: value})
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

// step consumes one token's worth of input (or advances past whitespace)
// starting at s.pos. It returns the first error encountered, if any.
func (s *scanner) step() error {
	c := s.runes[s.pos]

	switch {
	case c == '\n':
		s.emit(NewLine, s.line, "\n")
		s.pos++
		s.line++
		return nil

	case isSpace(c):
		s.pos++
		return nil

	case isIdentStart(c):
		return s.scanWord()

	case c == '0':
		return cartaerr.New(s.line, cartaerr.LeadingZero{})

	case c >= '1' && c <= '9':
		return s.scanInteger(c)

	case c == ':':
		return s.scanSingle(Colon, ":")
	case c == '{':
		return s.scanSingle(OpenBrace, "{")
	case c == '}':
		return s.scanSingle(CloseBrace, "}")
	case c == ',':
		return s.scanSingle(Comma, ",")
	case c == '[':
		return s.scanSingle(OpenBracket, "[")
	case c == ']':
		return s.scanSingle(CloseBracket, "]")
	case c == ';':
		return s.scanSingle(Semicolon, ";")

	case c == '/':
		return s.scanComment()

	default:
		return cartaerr.New(s.line, cartaerr.UnknownSymbol{Symbol: c})
	}
}

func (s *scanner) scanSingle(kind Kind, text string) error {
	s.emit(kind, s.line, text)
	s.pos++
	return nil
}

func (s *scanner) scanWord() error {
	start := s.line
	var b strings.Builder
	for s.pos < len(s.runes) && isIdentCont(s.runes[s.pos]) {
		b.WriteRune(s.runes[s.pos])
		s.pos++
	}
	s.emit(Word, start, b.String())
	return nil
}

// scanInteger consumes a decimal literal whose first digit (1-9) has
// already been identified by step, enforcing the 9-digit cap from the
// grammar (Integer ::= [1-9][0-9]{0,8}).
func (s *scanner) scanInteger(first rune) error {
	start := s.line
	digits := 1
	acc := uint32(first - '0')
	s.pos++

	for s.pos < len(s.runes) && isDigit(s.runes[s.pos]) {
		digits++
		if digits > 9 {
			return cartaerr.New(start, cartaerr.IntegerTooLarge{})
		}
		acc = acc*10 + uint32(s.runes[s.pos]-'0')
		s.pos++
	}

	s.emit(Integer, start, acc)
	return nil
}

// scanComment handles the CommentStart state: a '/' must be followed by
// another '/' (line comment) or a '*' (block comment).
func (s *scanner) scanComment() error {
	start := s.line
	s.pos++ // consume leading '/'

	if s.pos >= len(s.runes) {
		return cartaerr.New(start, cartaerr.UnexpectedSymbol{Expected: "* or /", Got: 0})
	}

	switch s.runes[s.pos] {
	case '/':
		s.pos++
		s.scanLineComment()
		return nil
	case '*':
		s.pos++
		return s.scanBlockComment(start)
	default:
		return cartaerr.New(start, cartaerr.UnexpectedSymbol{Expected: "* or /", Got: s.runes[s.pos]})
	}
}

// scanLineComment consumes up to and including the terminating newline.
// Reaching end of file inside a line comment is permitted.
func (s *scanner) scanLineComment() {
	for s.pos < len(s.runes) {
		if s.runes[s.pos] == '\n' {
			s.pos++
			s.line++
			return
		}
		s.pos++
	}
}

// scanBlockComment consumes a /* ... */ comment, tracking the
// BlockComment/BlockCommentMaybeEnd distinction from the spec: a '*' may
// only close the comment when immediately followed by '/'. Reaching end
// of file in either state is an error.
func (s *scanner) scanBlockComment(start int) error {
	maybeEnd := false
	for {
		if s.pos >= len(s.runes) {
			return cartaerr.New(start, cartaerr.UnclosedBlockComment{})
		}
		c := s.runes[s.pos]
		s.pos++

		if maybeEnd && c == '/' {
			return nil
		}
		if c == '\n' {
			s.line++
		}
		maybeEnd = c == '*'
	}
}
