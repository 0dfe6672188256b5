// Package diag defines the diagnostic model shared by the layout loader,
// the source inspector and the module graph builder.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (SYN/IO/PRJ/EXE prefixes), a short message, the file it concerns and an
// optional primary span. Producers emit through a Reporter; BagReporter
// collects into a Bag, which the driver returns to the CLI alongside the
// (possibly partial) dependency graph.
//
// Per-file problems (unreadable or malformed sources) are warnings: the graph
// builder keeps going and the caller decides whether to compile. Fatal
// configuration problems are returned as Go errors instead, never as
// diagnostics.
//
// Rendering lives in internal/diagfmt.
package diag
