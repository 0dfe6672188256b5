package planfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects a plan encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts the --format flag values.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMsgpack:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown plan format %q (want text, json or msgpack)", s)
	}
}

// Write encodes doc to w in format f.
func Write(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(doc)
	case FormatText, "":
		return writeText(w, doc)
	default:
		return fmt.Errorf("unknown plan format %q", f)
	}
}

// ReadMsgpack decodes a document produced by Write with FormatMsgpack.
func ReadMsgpack(r io.Reader) (Document, error) {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode plan: %w", err)
	}
	return doc, nil
}

func writeText(w io.Writer, doc Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "entry: %s\n", doc.Entry)
	fmt.Fprintf(&b, "output: %s\n", doc.Output)
	for _, batch := range doc.Batches {
		suffix := ""
		if batch.Cycle {
			suffix = " (cycle)"
		}
		fmt.Fprintf(&b, "batch %d%s: %s\n", batch.Index, suffix, strings.Join(batch.Modules, " "))
	}
	if len(doc.Modules) > 0 {
		b.WriteString("modules:\n")
		for _, m := range doc.Modules {
			fmt.Fprintf(&b, "  %s [batch %d] %s\n", m.Name, m.Batch, m.Path)
			for _, dep := range m.Deps {
				fmt.Fprintf(&b, "    -> %s\n", dep)
			}
			for _, ext := range m.External {
				fmt.Fprintf(&b, "    external %s\n", ext)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
