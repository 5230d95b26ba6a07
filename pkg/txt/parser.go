package txt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parser provides streaming TXT playlist parsing with callback-based
// processing, mirroring the M3U parser.
type Parser struct {
	// OnEntry is called for each parsed entry.
	OnEntry func(entry *Entry) error

	// OnError is called for recoverable parsing errors.
	// If nil, errors are silently ignored.
	OnError func(lineNum int, err error)
}

// Parse parses a group,name,url playlist from a reader. Blank lines and
// lines starting with # are skipped. The URL field may itself contain
// commas, so only the first two are separators.
func (p *Parser) Parse(r io.Reader) error {
	if p.OnEntry == nil {
		return fmt.Errorf("OnEntry callback is required")
	}

	scanner := bufio.NewScanner(r)
	const maxLineSize = 1024 * 1024
	buf := make([]byte, maxLineSize)
	scanner.Buffer(buf, maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			p.handleError(lineNum, fmt.Errorf("expected group,name,url, got %d fields", len(parts)))
			continue
		}

		entry := &Entry{
			Group: strings.TrimSpace(parts[0]),
			Name:  strings.TrimSpace(parts[1]),
			URL:   strings.TrimSpace(parts[2]),
		}
		if entry.Name == "" || entry.URL == "" {
			p.handleError(lineNum, fmt.Errorf("missing name or url"))
			continue
		}

		if err := p.OnEntry(entry); err != nil {
			return fmt.Errorf("callback error at line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning TXT: %w", err)
	}
	return nil
}

// handleError calls the OnError callback if set.
func (p *Parser) handleError(lineNum int, err error) {
	if p.OnError != nil {
		p.OnError(lineNum, err)
	}
}
