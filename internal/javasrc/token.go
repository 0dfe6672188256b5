package javasrc

import "jmake/internal/source"

type Kind uint8

const (
	EOF Kind = iota
	Ident
	Dot
	Semicolon
	Star
	At
	LParen
	RParen
	StringLit
	Other
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Dot:
		return "'.'"
	case Semicolon:
		return "';'"
	case Star:
		return "'*'"
	case At:
		return "'@'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case StringLit:
		return "literal"
	default:
		return "token"
	}
}

// Token is one lexeme of a Java file header. Text is the exact source slice.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

func (t Token) Is(kind Kind) bool { return t.Kind == kind }

// IsKeyword reports whether t is the identifier-shaped keyword kw.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Ident && t.Text == kw
}
