package buildpipeline

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// printCommand echoes argv in a form that can be pasted into a shell.
func printCommand(w io.Writer, argv []string) error {
	if w == nil {
		w = os.Stdout
	}
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	if _, err := fmt.Fprintln(w, strings.Join(quoted, " ")); err != nil {
		return fmt.Errorf("failed to print command: %w", err)
	}
	return nil
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
