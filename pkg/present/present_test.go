package present

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/mem/pkg/memory"
	"github.com/entrhq/mem/pkg/puzzle"
)

var created = time.Date(2026, 10, 18, 9, 12, 44, 120e6, time.UTC)

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; &#34;c&#34; &#39;d&#39;\nnext", Escape(`a <b> & "c" 'd'`+"\nnext"))
}

func TestPrinter_Note(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	e := &memory.Entry{ID: "mm-abcde", Type: memory.TypeNote, Content: "use </note> carefully\n", Created: created}
	require.NoError(t, p.Entry(e, nil))

	want := "" +
		"<note id=\"mm-abcde\" created=\"2026-10-18T09:12:44.120Z\">\n" +
		"use &lt;/note&gt; carefully\n" +
		"</note>\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_Puzzle(t *testing.T) {
	blocker := &memory.Entry{
		ID: "mm-bbbbb", Type: memory.TypePuzzle, Title: "Blocker", Status: memory.StatusOpen,
		Created: created, Blocks: memory.NewBlockSet("mm-aaaaa"),
	}
	target := &memory.Entry{
		ID: "mm-aaaaa", Type: memory.TypePuzzle, Title: "Ship <it>", Status: memory.StatusOpen,
		Created: created, Content: "details & more",
	}
	g := puzzle.New([]*memory.Entry{blocker, target})

	var buf bytes.Buffer
	require.NoError(t, New(&buf, false).Entry(target, g))

	want := "" +
		"<puzzle id=\"mm-aaaaa\" created=\"2026-10-18T09:12:44.120Z\" status=\"open\">\n" +
		"<state>blocked</state>\n" +
		"<title>Ship &lt;it&gt;</title>\n" +
		"<description>\n" +
		"details &amp; more\n" +
		"</description>\n" +
		"</puzzle>\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, New(&buf, false).Entry(blocker, g))
	assert.Contains(t, buf.String(), "<state>ready</state>\n")
	assert.Contains(t, buf.String(), "<blocks>mm-aaaaa</blocks>\n")
}

func TestPrinter_Entries(t *testing.T) {
	var buf bytes.Buffer
	entries := []*memory.Entry{
		{ID: "mm-fffff", Type: memory.TypeFeedback, Content: "too verbose", Created: created},
	}
	require.NoError(t, New(&buf, false).Entries("feedback-list", entries, nil))

	want := "" +
		"<feedback-list count=\"1\">\n" +
		"<feedback id=\"mm-fffff\" created=\"2026-10-18T09:12:44.120Z\">\n" +
		"too verbose\n" +
		"</feedback>\n" +
		"</feedback-list>\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_PuzzleListAndTree(t *testing.T) {
	a := &memory.Entry{ID: "mm-aaaaa", Type: memory.TypePuzzle, Title: "A", Status: memory.StatusOpen, Created: created, Blocks: memory.NewBlockSet("mm-bbbbb")}
	b := &memory.Entry{ID: "mm-bbbbb", Type: memory.TypePuzzle, Title: "B & C", Status: memory.StatusOpen, Created: created.Add(time.Second)}
	g := puzzle.New([]*memory.Entry{a, b})

	var buf bytes.Buffer
	p := New(&buf, false)
	require.NoError(t, p.PuzzleList("puzzles", g.Open(), g))
	assert.Equal(t, "<puzzles count=\"2\">\nmm-bbbbb [blocked] B &amp; C\nmm-aaaaa [ready] A\n</puzzles>\n", buf.String())

	buf.Reset()
	lines, err := g.TreeLines("mm-bbbbb")
	require.NoError(t, err)
	require.NoError(t, p.Tree("mm-bbbbb", lines, g))
	assert.Equal(t, "<tree root=\"mm-bbbbb\">\n  mm-aaaaa: A\n→ mm-bbbbb: B &amp; C\n</tree>\n", buf.String())
}

func TestPrinter_Budget(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	require.NoError(t, p.Budget(memory.Budget{Used: 100, Soft: 30000, Hard: 32768}))
	assert.Equal(t, "<budget used=\"100\" soft=\"30000\" hard=\"32768\" remaining=\"32668\"/>\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Budget(memory.Budget{Used: 31000, Soft: 30000, Hard: 32768}))
	assert.Contains(t, buf.String(), "warning: notes use 31000 bytes")
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	var buf bytes.Buffer
	e := &memory.Entry{ID: "mm-abcde", Type: memory.TypeNote, Content: "hello", Created: created}
	require.NoError(t, New(&buf, true).Entry(e, nil))
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "mm-abcde")
}
