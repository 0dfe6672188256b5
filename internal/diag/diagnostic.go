package diag

import (
	"jmake/internal/source"
)

// Note adds secondary context to a diagnostic.
type Note struct {
	Path string
	Span source.Span
	Msg  string
}

// Diagnostic is a single finding about the project or one of its files.
// Path is always set when the finding concerns a file; Primary is only
// meaningful when HasSpan is true (layout-level findings have no span).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Primary  source.Span
	HasSpan  bool
	Notes    []Note
}

func New(sev Severity, code Code, path, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Path:     path,
		Message:  msg,
	}
}

func NewError(code Code, path, msg string) Diagnostic {
	return New(SevError, code, path, msg)
}

func NewWarning(code Code, path, msg string) Diagnostic {
	return New(SevWarning, code, path, msg)
}

// At attaches a primary span.
func (d Diagnostic) At(sp source.Span) Diagnostic {
	d.Primary = sp
	d.HasSpan = true
	return d
}

func (d Diagnostic) WithNote(path string, sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Path: path, Span: sp, Msg: msg})
	return d
}
