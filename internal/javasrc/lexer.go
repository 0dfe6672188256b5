package javasrc

import (
	"unicode"

	"jmake/internal/source"
)

// Lexer produces the tokens of a Java file header. It understands only what
// can appear before the first type declaration: identifiers, punctuation,
// comments and the literals of annotation arguments.
type Lexer struct {
	cursor Cursor
	file   *source.File
}

func NewLexer(f *source.File) *Lexer {
	return &Lexer{cursor: NewCursor(f), file: f}
}

// Next returns the next token. Comment and literal errors come back as
// *project.HeaderError.
func (lx *Lexer) Next() (Token, error) {
	if err := lx.skipTrivia(); err != nil {
		return Token{}, err
	}
	start := lx.cursor.Mark()
	if lx.cursor.EOF() {
		return Token{Kind: EOF, Span: lx.cursor.SpanFrom(start)}, nil
	}

	if r, _ := lx.cursor.PeekRune(); isIdentStart(r) {
		lx.cursor.BumpRune()
		for {
			r, size := lx.cursor.PeekRune()
			if size == 0 || !isIdentContinue(r) {
				break
			}
			lx.cursor.BumpRune()
		}
		return lx.token(Ident, start), nil
	}

	if b := lx.cursor.Peek(); b == '"' || b == '\'' {
		if err := lx.scanQuoted(); err != nil {
			return Token{}, err
		}
		return lx.token(StringLit, start), nil
	}

	kind := Other
	switch lx.cursor.Bump() {
	case '.':
		kind = Dot
	case ';':
		kind = Semicolon
	case '*':
		kind = Star
	case '@':
		kind = At
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	default:
		// keep multi-byte runes whole so spans stay on rune boundaries
		lx.cursor.Reset(start)
		lx.cursor.BumpRune()
	}
	return lx.token(kind, start), nil
}

func (lx *Lexer) token(kind Kind, start Mark) Token {
	sp := lx.cursor.SpanFrom(start)
	return Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

// skipTrivia consumes whitespace, // comments and /* */ comments.
// Java block comments do not nest.
func (lx *Lexer) skipTrivia() error {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\n', '\r', '\f':
			lx.cursor.Bump()
			continue
		case '/':
			b0, b1, ok := lx.cursor.Peek2()
			if !ok || b0 != '/' || (b1 != '/' && b1 != '*') {
				return nil
			}
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.cursor.Bump()
			if b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
			if !lx.skipBlockComment() {
				return lx.errorAt(lx.cursor.SpanFrom(start), "unterminated comment")
			}
			continue
		}
		return nil
	}
	return nil
}

func (lx *Lexer) skipBlockComment() bool {
	for !lx.cursor.EOF() {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return true
		}
		lx.cursor.Bump()
	}
	return false
}

// scanQuoted consumes a string, char or text block literal.
func (lx *Lexer) scanQuoted() error {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	if quote == '"' {
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '"' && b1 == '"' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			return lx.scanTextBlock(start)
		}
	}
	for !lx.cursor.EOF() {
		switch lx.cursor.Bump() {
		case '\\':
			lx.cursor.Bump()
		case quote:
			return nil
		case '\n':
			return lx.errorAt(lx.cursor.SpanFrom(start), "unterminated literal")
		}
	}
	return lx.errorAt(lx.cursor.SpanFrom(start), "unterminated literal")
}

func (lx *Lexer) scanTextBlock(start Mark) error {
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == '"' {
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '"' && b1 == '"' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				return nil
			}
		}
	}
	return lx.errorAt(lx.cursor.SpanFrom(start), "unterminated text block")
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc)
}
