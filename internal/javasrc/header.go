package javasrc

import (
	"fmt"
	"strings"

	"jmake/internal/project"
	"jmake/internal/source"
)

// ParseHeader reads the package and import declarations of f. Parsing stops
// at the first token that cannot belong to the header, usually the first
// modifier or type keyword, so the body of the file is never examined.
func ParseHeader(f *source.File) (project.SourceFacts, error) {
	p := &headerParser{lx: NewLexer(f), path: f.Path}
	facts := project.SourceFacts{File: f.ID}
	if err := p.advance(); err != nil {
		return facts, err
	}

	if err := p.skipPackageAnnotations(); err != nil {
		return facts, err
	}
	if p.tok.IsKeyword("package") {
		start := p.tok.Span
		if err := p.advance(); err != nil {
			return facts, err
		}
		name, _, err := p.qualifiedName("package name", false)
		if err != nil {
			return facts, err
		}
		if !p.tok.Is(Semicolon) {
			return facts, p.expected("';' after package declaration")
		}
		facts.Package = name
		facts.HasPackage = true
		facts.PackageAt = start.Cover(p.tok.Span)
		if err := p.advance(); err != nil {
			return facts, err
		}
	}

	for {
		switch {
		case p.tok.Is(Semicolon):
			if err := p.advance(); err != nil {
				return facts, err
			}
		case p.tok.IsKeyword("import"):
			imp, ok, err := p.importDecl()
			if err != nil {
				return facts, err
			}
			if ok {
				facts.Imports = append(facts.Imports, imp)
			}
		case p.tok.IsKeyword("package"):
			return facts, p.errorAt(p.tok.Span, "package declaration must come before imports")
		default:
			return facts, nil
		}
	}
}

type headerParser struct {
	lx   *Lexer
	path string
	tok  Token
	// one token of lookahead is enough except after "@", see skipPackageAnnotations
	pending []Token
}

func (p *headerParser) advance() error {
	if len(p.pending) > 0 {
		p.tok = p.pending[0]
		p.pending = p.pending[1:]
		return nil
	}
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// skipPackageAnnotations consumes annotations that precede a package
// declaration (package-info.java). When the annotations turn out to belong
// to a type, the parser is rewound so the header ends before them.
func (p *headerParser) skipPackageAnnotations() error {
	if !p.tok.Is(At) {
		return nil
	}
	var consumed []Token
	take := func() error {
		consumed = append(consumed, p.tok)
		return p.advance()
	}
	for p.tok.Is(At) {
		if err := take(); err != nil {
			return err
		}
		if p.tok.IsKeyword("interface") {
			break
		}
		// annotation name: Ident {"." Ident}; a bare "package" after it starts the declaration
		if !p.tok.Is(Ident) {
			break
		}
		if err := take(); err != nil {
			return err
		}
		for p.tok.Is(Dot) {
			if err := take(); err != nil {
				return err
			}
			if !p.tok.Is(Ident) {
				break
			}
			if err := take(); err != nil {
				return err
			}
		}
		if p.tok.Is(LParen) {
			depth := 0
			for {
				switch p.tok.Kind {
				case LParen:
					depth++
				case RParen:
					depth--
				case EOF:
					return p.errorAt(p.tok.Span, "unterminated annotation arguments")
				}
				if err := take(); err != nil {
					return err
				}
				if depth == 0 {
					break
				}
			}
		}
	}
	if p.tok.IsKeyword("package") {
		return nil
	}
	// not a package annotation: replay everything so the header ends here
	p.pending = append(append(consumed[1:], p.tok), p.pending...)
	p.tok = consumed[0]
	return nil
}

// importDecl parses "import [static] a.b.C[.*];". Module imports
// ("import module m;") are consumed and reported as not ok.
func (p *headerParser) importDecl() (project.ImportMeta, bool, error) {
	start := p.tok.Span
	if err := p.advance(); err != nil {
		return project.ImportMeta{}, false, err
	}
	imp := project.ImportMeta{}
	if p.tok.IsKeyword("static") {
		imp.Static = true
		if err := p.advance(); err != nil {
			return imp, false, err
		}
	}
	moduleImport := false
	if !imp.Static && p.tok.IsKeyword("module") {
		moduleTok := p.tok
		if err := p.advance(); err != nil {
			return imp, false, err
		}
		if p.tok.Is(Ident) {
			moduleImport = true
		} else {
			// "module" was the first segment of an ordinary import
			p.pending = append([]Token{p.tok}, p.pending...)
			p.tok = moduleTok
		}
	}

	name, wildcard, err := p.qualifiedName("import name", !moduleImport)
	if err != nil {
		return imp, false, err
	}
	if !p.tok.Is(Semicolon) {
		return imp, false, p.expected("';' after import")
	}
	if imp.Static && !wildcard && !strings.Contains(name, ".") {
		return imp, false, p.errorAt(start.Cover(p.tok.Span), "static import must name a member of a class")
	}
	imp.Target = name
	imp.Wildcard = wildcard
	imp.Span = start.Cover(p.tok.Span)
	if err := p.advance(); err != nil {
		return imp, false, err
	}
	return imp, !moduleImport, nil
}

// qualifiedName parses Ident {"." Ident} and, if allowed, a trailing ".*".
func (p *headerParser) qualifiedName(what string, allowWildcard bool) (string, bool, error) {
	if !p.tok.Is(Ident) {
		return "", false, p.expected(what)
	}
	var sb strings.Builder
	sb.WriteString(p.tok.Text)
	for {
		if err := p.advance(); err != nil {
			return "", false, err
		}
		if !p.tok.Is(Dot) {
			return sb.String(), false, nil
		}
		if err := p.advance(); err != nil {
			return "", false, err
		}
		switch {
		case p.tok.Is(Ident):
			sb.WriteByte('.')
			sb.WriteString(p.tok.Text)
		case p.tok.Is(Star) && allowWildcard:
			if err := p.advance(); err != nil {
				return "", false, err
			}
			return sb.String(), true, nil
		default:
			return "", false, p.expected(what)
		}
	}
}

func (p *headerParser) expected(what string) error {
	return p.errorAt(p.tok.Span, fmt.Sprintf("expected %s, found %s", what, describe(p.tok)))
}

func (p *headerParser) errorAt(sp source.Span, msg string) error {
	return &project.HeaderError{Path: p.path, Span: sp, Msg: msg}
}

func (lx *Lexer) errorAt(sp source.Span, msg string) error {
	return &project.HeaderError{Path: lx.file.Path, Span: sp, Msg: msg}
}

func describe(t Token) string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%q", t.Text)
}
