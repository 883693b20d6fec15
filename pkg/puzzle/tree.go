package puzzle

import (
	"strings"

	"github.com/entrhq/mem/pkg/memory"
)

const (
	treeIndent = "  "
	treeGlyph  = "→ "
)

// Line is one rendered row of a tree.
type Line struct {
	Entry  *memory.Entry
	Indent int  // indent levels before the glyph
	Marked bool // root and descendants carry the glyph; ancestors do not
}

// Text formats the row as "<indent>[glyph]id: title".
func (l Line) Text() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(treeIndent, l.Indent))
	if l.Marked {
		sb.WriteString(treeGlyph)
	}
	sb.WriteString(l.Entry.ID)
	sb.WriteString(": ")
	sb.WriteString(l.Entry.Title)
	return sb.String()
}

// TreeLines lays out the tree around rootID: the ancestor chain at one
// indent level, the root with the glyph, then descendants indented by depth.
func (g *Graph) TreeLines(rootID string) ([]Line, error) {
	root, err := g.Get(rootID)
	if err != nil {
		return nil, err
	}
	ancestors, err := g.AncestorChain(rootID)
	if err != nil {
		return nil, err
	}
	descendants, err := g.DescendantSubtree(rootID)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(ancestors)+1+len(descendants))
	for _, a := range ancestors {
		lines = append(lines, Line{Entry: a, Indent: 1})
	}
	lines = append(lines, Line{Entry: root, Marked: true})
	for _, d := range descendants {
		lines = append(lines, Line{Entry: d.Entry, Indent: d.Depth, Marked: true})
	}
	return lines, nil
}

// RenderTree renders the tree around rootID, one line per puzzle.
func (g *Graph) RenderTree(rootID string) (string, error) {
	lines, err := g.TreeLines(rootID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Text())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
