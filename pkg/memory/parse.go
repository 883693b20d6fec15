package memory

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// header is the on-disk front-matter layout. Field order is the order keys
// are written in.
type header struct {
	Type     Type       `yaml:"type"`
	Created  time.Time  `yaml:"created"`
	Title    string     `yaml:"title,omitempty"`
	Status   Status     `yaml:"status,omitempty"`
	ClosedAt *time.Time `yaml:"closedAt,omitempty"`
	Blocks   []string   `yaml:"blocks,omitempty"`
}

// rawHeader is what Decode reads before validating. Timestamps stay as text
// and blocks stays a node so that loosely typed values can be inspected.
type rawHeader struct {
	Type     string    `yaml:"type"`
	Created  string    `yaml:"created"`
	Title    string    `yaml:"title"`
	Status   string    `yaml:"status"`
	ClosedAt string    `yaml:"closedAt"`
	Blocks   yaml.Node `yaml:"blocks"`
}

// Decode parses the raw contents of the entry file for id. Unusable blocks
// values are dropped and logged; use DecodeReport to inspect them.
func Decode(id string, raw []byte) (*Entry, error) {
	e, dropped, err := DecodeReport(id, raw)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		slog.Debug("memory: dropped header value", "id", id, "reason", d)
	}
	return e, nil
}

// DecodeReport is Decode that also returns a description of every blocks
// value that was left out of the entry.
func DecodeReport(id string, raw []byte) (*Entry, []string, error) {
	if err := CheckID(id); err != nil {
		return nil, nil, err
	}
	yamlBlock, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedEntry, id, err)
	}

	var h rawHeader
	if err := yaml.Unmarshal([]byte(yamlBlock), &h); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: front-matter parse error: %v", ErrMalformedEntry, id, err)
	}

	e := &Entry{
		ID:      id,
		Type:    Type(strings.TrimSpace(h.Type)),
		Content: strings.TrimSpace(body),
	}
	if !e.Type.Valid() {
		return nil, nil, fmt.Errorf("%w: %s: unknown type %q", ErrMalformedEntry, id, h.Type)
	}
	if e.Created, err = parseTime(h.Created); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: created: %v", ErrMalformedEntry, id, err)
	}

	var dropped []string
	if e.Type == TypePuzzle {
		e.Title = strings.TrimSpace(h.Title)
		e.Status = Status(strings.TrimSpace(h.Status))
		if e.Status == "" {
			e.Status = StatusOpen
		}
		if h.ClosedAt != "" && e.Status == StatusClosed {
			closedAt, err := parseTime(h.ClosedAt)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: closedAt: %v", ErrMalformedEntry, id, err)
			}
			e.ClosedAt = &closedAt
		}
		e.Blocks, dropped = ParseBlocks(&h.Blocks, id)
	}

	if err := e.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrMalformedEntry, id, err)
	}
	return e, dropped, nil
}

// Encode renders an entry to its on-disk representation. Optional puzzle
// fields are omitted when unset, and the body always ends in one newline.
func Encode(e *Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	h := header{
		Type:    e.Type,
		Created: e.Created.UTC(),
		Title:   e.Title,
		Status:  e.Status,
		Blocks:  e.Blocks,
	}
	if e.ClosedAt != nil {
		closedAt := e.ClosedAt.UTC()
		h.ClosedAt = &closedAt
	}
	yamlBytes, err := yaml.Marshal(&h)
	if err != nil {
		return nil, fmt.Errorf("memory: serialize %s: %w", e.ID, err)
	}

	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n")
	if content := strings.TrimSpace(e.Content); content != "" {
		sb.WriteString("\n")
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// splitFrontMatter separates the YAML block from the body. The file must open
// with a delimiter line and contain a second delimiter line closing the block.
func splitFrontMatter(s string) (yamlBlock, body string, err error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimPrefix(s, "\ufeff")
	if !strings.HasPrefix(s, frontMatterDelimiter+"\n") {
		return "", "", fmt.Errorf("missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	for offset := 0; ; {
		idx := strings.Index(rest[offset:], "\n"+frontMatterDelimiter)
		if idx == -1 {
			return "", "", fmt.Errorf("unclosed front-matter block")
		}
		end := offset + idx + len("\n"+frontMatterDelimiter)
		// The closing delimiter must be a line of its own.
		if end == len(rest) || rest[end] == '\n' {
			return rest[:offset+idx], rest[end:], nil
		}
		offset = end
	}
}

// timeLayout keeps millisecond precision, matching how entries are stamped.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}

// FormatTime renders a timestamp the way the command layer prints it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
