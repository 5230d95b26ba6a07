// Package txt writes plain-text playlists: one "group,name,url" line per
// track, comma separated, no header. Output is deterministic for identical
// input.
package txt

import (
	"fmt"
	"io"
	"strings"
)

// Entry is one playlist line.
type Entry struct {
	// Group is the resolved group title.
	Group string

	// Name is the resolved display name.
	Name string

	// URL is the stream URL.
	URL string
}

// Writer provides streaming TXT playlist writing.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new TXT writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEntry writes one playlist line. Commas inside group or name would
// corrupt the three-field format, so they are replaced with spaces.
func (w *Writer) WriteEntry(entry *Entry) error {
	line := fmt.Sprintf("%s,%s,%s",
		sanitize(entry.Group),
		sanitize(entry.Name),
		entry.URL,
	)
	if _, err := fmt.Fprintln(w.w, line); err != nil {
		return fmt.Errorf("writing TXT entry: %w", err)
	}
	return nil
}

// sanitize strips field-separating commas and surrounding whitespace.
func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
}
