package requirements

import (
	"fmt"
	"io"
	"strings"
)

// Write serializes the manifest in normalized form, one entry per line.
func (m *Manifest) Write(w io.Writer) error {
	for _, e := range m.Entries {
		var line string
		switch e.Kind {
		case EntryBlank:
		case EntryComment:
			line = "# " + e.Text
		case EntryDirective:
			line = e.Dir.String()
		case EntryRequirement:
			line = e.Req.String()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}
	return nil
}

// Format returns the normalized manifest text.
func (m *Manifest) Format() string {
	var b strings.Builder
	_ = m.Write(&b)
	return b.String()
}
