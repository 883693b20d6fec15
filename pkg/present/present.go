// Package present renders entries and puzzle views as tag-delimited text.
// Markup characters in user content are escaped so that the surrounding
// tags stay unambiguous to whatever parses the output.
package present

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/entrhq/mem/pkg/memory"
	"github.com/entrhq/mem/pkg/puzzle"
)

var (
	mintGreen  = lipgloss.Color("#A8E6CF")
	salmonPink = lipgloss.Color("#FFB3BA")
	mutedGray  = lipgloss.Color("#6B7280")

	tagStyle     = lipgloss.NewStyle().Foreground(mutedGray)
	readyStyle   = lipgloss.NewStyle().Foreground(mintGreen).Bold(true)
	blockedStyle = lipgloss.NewStyle().Foreground(salmonPink).Bold(true)
	closedStyle  = lipgloss.NewStyle().Foreground(mutedGray).Strikethrough(true)
	warnStyle    = lipgloss.NewStyle().Foreground(salmonPink)
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Printer writes rendered output to w. Styling is applied only when styled
// is set, which callers do for terminals.
type Printer struct {
	w      io.Writer
	styled bool
}

func New(w io.Writer, styled bool) *Printer {
	return &Printer{w: w, styled: styled}
}

// Escape escapes markup characters in s.
func Escape(s string) string {
	return html.EscapeString(s)
}

type attr struct{ key, val string }

func (p *Printer) open(tag string, attrs ...attr) string {
	var sb strings.Builder
	sb.WriteString("<" + tag)
	for _, a := range attrs {
		if a.val == "" {
			continue
		}
		fmt.Fprintf(&sb, " %s=\"%s\"", a.key, Escape(a.val))
	}
	sb.WriteString(">")
	return p.tag(sb.String())
}

func (p *Printer) close(tag string) string {
	return p.tag("</" + tag + ">")
}

func (p *Printer) tag(s string) string {
	if p.styled {
		return tagStyle.Render(s)
	}
	return s
}

func (p *Printer) state(s puzzle.State) string {
	if !p.styled {
		return string(s)
	}
	switch s {
	case puzzle.StateReady:
		return readyStyle.Render(string(s))
	case puzzle.StateBlocked:
		return blockedStyle.Render(string(s))
	case puzzle.StateClosed:
		return closedStyle.Render(string(s))
	}
	return string(s)
}

func (p *Printer) write(s string) error {
	_, err := io.WriteString(p.w, s)
	return err
}

// Entry writes one entry. g may be nil; puzzles then render without state.
func (p *Printer) Entry(e *memory.Entry, g *puzzle.Graph) error {
	return p.write(p.entry(e, g))
}

func (p *Printer) entry(e *memory.Entry, g *puzzle.Graph) string {
	tag := string(e.Type)
	attrs := []attr{{"id", e.ID}, {"created", memory.FormatTime(e.Created)}}

	var sb strings.Builder
	if e.IsPuzzle() {
		state := ""
		if g != nil {
			state = string(g.Classify(e))
		}
		attrs = append(attrs, attr{"status", string(e.Status)})
		if e.ClosedAt != nil {
			attrs = append(attrs, attr{"closed", memory.FormatTime(*e.ClosedAt)})
		}
		sb.WriteString(p.open(tag, attrs...))
		sb.WriteString("\n")
		if state != "" {
			sb.WriteString(p.open("state") + p.state(puzzle.State(state)) + p.close("state") + "\n")
		}
		sb.WriteString(p.open("title") + Escape(e.Title) + p.close("title") + "\n")
		if e.Blocks.Len() > 0 {
			sb.WriteString(p.open("blocks") + strings.Join(e.Blocks, " ") + p.close("blocks") + "\n")
		}
		if c := strings.TrimSpace(e.Content); c != "" {
			sb.WriteString(p.open("description") + "\n" + Escape(c) + "\n" + p.close("description") + "\n")
		}
	} else {
		sb.WriteString(p.open(tag, attrs...))
		sb.WriteString("\n")
		sb.WriteString(Escape(strings.TrimSpace(e.Content)))
		sb.WriteString("\n")
	}
	sb.WriteString(p.close(tag))
	sb.WriteString("\n")
	return sb.String()
}

// Entries writes entries inside a <name count="n"> wrapper.
func (p *Printer) Entries(name string, entries []*memory.Entry, g *puzzle.Graph) error {
	var sb strings.Builder
	sb.WriteString(p.open(name, attr{"count", fmt.Sprint(len(entries))}))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(p.entry(e, g))
	}
	sb.WriteString(p.close(name))
	sb.WriteString("\n")
	return p.write(sb.String())
}

// PuzzleList writes one line per puzzle: "id [state] title".
func (p *Printer) PuzzleList(name string, puzzles []*memory.Entry, g *puzzle.Graph) error {
	var sb strings.Builder
	sb.WriteString(p.open(name, attr{"count", fmt.Sprint(len(puzzles))}))
	sb.WriteString("\n")
	for _, e := range puzzles {
		fmt.Fprintf(&sb, "%s [%s] %s\n", e.ID, p.state(g.Classify(e)), Escape(e.Title))
	}
	sb.WriteString(p.close(name))
	sb.WriteString("\n")
	return p.write(sb.String())
}

// Tree writes the rendered tree around root.
func (p *Printer) Tree(root string, lines []puzzle.Line, g *puzzle.Graph) error {
	var sb strings.Builder
	sb.WriteString(p.open("tree", attr{"root", root}))
	sb.WriteString("\n")
	for _, l := range lines {
		text := Escape(l.Text())
		if p.styled && l.Entry.ID == root {
			text = p.state(g.Classify(l.Entry)) + " " + text
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	sb.WriteString(p.close("tree"))
	sb.WriteString("\n")
	return p.write(sb.String())
}

// Budget writes the note budget, with a warning line past the soft limit.
func (p *Printer) Budget(b memory.Budget) error {
	var sb strings.Builder
	sb.WriteString(p.tag(fmt.Sprintf("<budget used=\"%d\" soft=\"%d\" hard=\"%d\" remaining=\"%d\"/>", b.Used, b.Soft, b.Hard, b.Remaining())))
	sb.WriteString("\n")
	if b.Warn() {
		msg := fmt.Sprintf("warning: notes use %d bytes, above the %d byte soft limit; consolidate with note replace", b.Used, b.Soft)
		if p.styled {
			msg = warnStyle.Render(msg)
		}
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	return p.write(sb.String())
}

// Message writes a single escaped status line such as "created mm-abcde".
func (p *Printer) Message(format string, args ...any) error {
	return p.write(Escape(fmt.Sprintf(format, args...)) + "\n")
}
