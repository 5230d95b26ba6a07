package m3u

import (
	"fmt"
	"io"
	"strings"
)

// Writer provides streaming M3U playlist writing. Output is deterministic
// for identical input: attributes are emitted in a fixed order and empty
// attributes are omitted rather than written empty.
type Writer struct {
	w             io.Writer
	tvgURL        string
	headerWritten bool
}

// NewWriter creates a new M3U writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WithTvgURL sets the EPG URL emitted as the x-tvg-url header attribute.
func (w *Writer) WithTvgURL(url string) *Writer {
	w.tvgURL = url
	return w
}

// WriteHeader writes the #EXTM3U header line.
// This is automatically called by WriteEntry if not already written.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return nil
	}
	header := "#EXTM3U"
	if w.tvgURL != "" {
		header = fmt.Sprintf(`#EXTM3U x-tvg-url="%s"`, escapeQuotes(w.tvgURL))
	}
	if _, err := fmt.Fprintln(w.w, header); err != nil {
		return fmt.Errorf("writing M3U header: %w", err)
	}
	w.headerWritten = true
	return nil
}

// WriteEntry writes a single channel entry to the M3U playlist.
func (w *Writer) WriteEntry(entry *Entry) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}

	var attrs []string
	if entry.TvgID != "" {
		attrs = append(attrs, fmt.Sprintf(`tvg-id="%s"`, escapeQuotes(entry.TvgID)))
	}
	if entry.TvgName != "" {
		attrs = append(attrs, fmt.Sprintf(`tvg-name="%s"`, escapeQuotes(entry.TvgName)))
	}
	if entry.TvgLogo != "" {
		attrs = append(attrs, fmt.Sprintf(`tvg-logo="%s"`, escapeQuotes(entry.TvgLogo)))
	}
	if entry.TvgLanguage != "" {
		attrs = append(attrs, fmt.Sprintf(`tvg-language="%s"`, escapeQuotes(entry.TvgLanguage)))
	}
	if entry.Catchup != "" {
		attrs = append(attrs, fmt.Sprintf(`catchup="%s"`, escapeQuotes(entry.Catchup)))
	}
	if entry.CatchupSource != "" {
		attrs = append(attrs, fmt.Sprintf(`catchup-source="%s"`, escapeQuotes(entry.CatchupSource)))
	}
	if entry.GroupTitle != "" {
		attrs = append(attrs, fmt.Sprintf(`group-title="%s"`, escapeQuotes(entry.GroupTitle)))
	}

	duration := entry.Duration
	if duration == 0 {
		duration = -1 // live streams carry no duration
	}

	var extinf string
	if len(attrs) > 0 {
		extinf = fmt.Sprintf("#EXTINF:%d %s,%s", duration, strings.Join(attrs, " "), entry.Title)
	} else {
		extinf = fmt.Sprintf("#EXTINF:%d,%s", duration, entry.Title)
	}

	if _, err := fmt.Fprintln(w.w, extinf); err != nil {
		return fmt.Errorf("writing EXTINF: %w", err)
	}
	if _, err := fmt.Fprintln(w.w, entry.URL); err != nil {
		return fmt.Errorf("writing URL: %w", err)
	}
	return nil
}

// escapeQuotes escapes double quotes in attribute values.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
