package memory

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	created := time.Date(2026, 1, 15, 10, 30, 0, 123000000, time.UTC)
	closedAt := created.Add(2 * time.Hour)

	tests := []struct {
		name  string
		entry *Entry
	}{
		{
			name:  "note",
			entry: &Entry{ID: "mm-abcde", Type: TypeNote, Content: "Remember the build tags.\nTwo lines.", Created: created},
		},
		{
			name:  "feedback",
			entry: &Entry{ID: "mm-fdbk2", Type: TypeFeedback, Content: "Prefer table tests", Created: created},
		},
		{
			name:  "open puzzle without description",
			entry: &Entry{ID: "mm-pzzl3", Type: TypePuzzle, Title: "Main", Status: StatusOpen, Created: created},
		},
		{
			name: "open puzzle blocking two others",
			entry: &Entry{
				ID: "mm-pzzl4", Type: TypePuzzle, Title: "Setup", Status: StatusOpen, Created: created,
				Content: "Install the toolchain", Blocks: NewBlockSet("mm-aaaaa", "mm-bbbbb"),
			},
		},
		{
			name: "closed puzzle",
			entry: &Entry{
				ID: "mm-pzzl5", Type: TypePuzzle, Title: "Done: thing", Status: StatusClosed,
				Created: created, ClosedAt: &closedAt,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.entry)
			require.NoError(t, err)

			got, err := Decode(tt.entry.ID, raw)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.entry, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	created := time.Date(2026, 10, 18, 9, 0, 0, 123000000, time.UTC)

	t.Run("note omits puzzle fields", func(t *testing.T) {
		raw, err := Encode(&Entry{ID: "mm-abcde", Type: TypeNote, Content: "  hello\n\n", Created: created})
		require.NoError(t, err)
		assert.Equal(t, "---\ntype: note\ncreated: 2026-10-18T09:00:00.123Z\n---\n\nhello\n", string(raw))
	})

	t.Run("puzzle writes blocks as a list", func(t *testing.T) {
		raw, err := Encode(&Entry{
			ID: "mm-abcde", Type: TypePuzzle, Title: "Ship", Status: StatusOpen,
			Created: created, Blocks: NewBlockSet("mm-bbbbb"),
		})
		require.NoError(t, err)
		s := string(raw)
		assert.Contains(t, s, "title: Ship\n")
		assert.Contains(t, s, "status: open\n")
		assert.Contains(t, s, "blocks:\n")
		assert.Contains(t, s, "- mm-bbbbb\n")
		assert.NotContains(t, s, "closedAt")
		assert.True(t, strings.HasSuffix(s, "---\n"), "empty body should end at the closing delimiter")
	})

	t.Run("invalid entry is refused", func(t *testing.T) {
		_, err := Encode(&Entry{ID: "mm-abcde", Type: TypePuzzle, Status: StatusOpen, Created: created})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		raw  string
		want error
	}{
		{
			name: "missing delimiter",
			id:   "mm-abcde",
			raw:  "just some text",
			want: ErrMalformedEntry,
		},
		{
			name: "unclosed block",
			id:   "mm-abcde",
			raw:  "---\ntype: note\nno closing delimiter",
			want: ErrMalformedEntry,
		},
		{
			name: "unknown type",
			id:   "mm-abcde",
			raw:  "---\ntype: memo\ncreated: 2026-01-01T00:00:00.000Z\n---\nbody\n",
			want: ErrMalformedEntry,
		},
		{
			name: "bad created",
			id:   "mm-abcde",
			raw:  "---\ntype: note\ncreated: yesterday\n---\nbody\n",
			want: ErrMalformedEntry,
		},
		{
			name: "puzzle without title",
			id:   "mm-abcde",
			raw:  "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\n---\n",
			want: ErrMalformedEntry,
		},
		{
			name: "closed puzzle without closedAt",
			id:   "mm-abcde",
			raw:  "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\ntitle: T\nstatus: closed\n---\n",
			want: ErrMalformedEntry,
		},
		{
			name: "bad yaml",
			id:   "mm-abcde",
			raw:  "---\ntype: [note\n---\n",
			want: ErrMalformedEntry,
		},
		{
			name: "file name is not an id",
			id:   "README",
			raw:  "---\ntype: note\ncreated: 2026-01-01T00:00:00.000Z\n---\nbody\n",
			want: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.id, []byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestDecodeNormalizes(t *testing.T) {
	t.Run("body is trimmed and CRLF accepted", func(t *testing.T) {
		raw := "---\r\ntype: note\r\ncreated: 2026-01-01T00:00:00.000Z\r\n---\r\n\r\n  body text  \r\n\r\n"
		e, err := Decode("mm-abcde", []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, "body text", e.Content)
	})

	t.Run("puzzle without status is open", func(t *testing.T) {
		raw := "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\ntitle: T\n---\n"
		e, err := Decode("mm-abcde", []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, StatusOpen, e.Status)
		assert.Nil(t, e.ClosedAt)
	})

	t.Run("open puzzle ignores stale closedAt", func(t *testing.T) {
		raw := "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\ntitle: T\nstatus: open\nclosedAt: 2026-01-02T00:00:00.000Z\n---\n"
		e, err := Decode("mm-abcde", []byte(raw))
		require.NoError(t, err)
		assert.Nil(t, e.ClosedAt)
	})

	t.Run("puzzle fields on a note are ignored", func(t *testing.T) {
		raw := "---\ntype: note\ncreated: 2026-01-01T00:00:00.000Z\ntitle: stray\nblocks: mm-bbbbb\n---\nbody\n"
		e, err := Decode("mm-abcde", []byte(raw))
		require.NoError(t, err)
		assert.Empty(t, e.Title)
		assert.Empty(t, e.Blocks)
	})

	t.Run("delimiter-like line inside header value", func(t *testing.T) {
		raw := "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\ntitle: T\n----\n---\nbody\n"
		_, err := Decode("mm-abcde", []byte(raw))
		// "----" is not a delimiter, so the YAML block contains it and fails to parse.
		assert.ErrorIs(t, err, ErrMalformedEntry)
	})
}

func TestDecodeLenientBlocks(t *testing.T) {
	const head = "---\ntype: puzzle\ncreated: 2026-01-01T00:00:00.000Z\ntitle: T\n"

	tests := []struct {
		name        string
		blocks      string
		want        BlockSet
		wantDropped int
	}{
		{name: "absent", blocks: "", want: nil},
		{name: "null", blocks: "blocks:\n", want: nil},
		{name: "single string", blocks: "blocks: mm-bbbbb\n", want: BlockSet{"mm-bbbbb"}},
		{name: "list", blocks: "blocks:\n  - mm-bbbbb\n  - mm-ccccc\n", want: BlockSet{"mm-bbbbb", "mm-ccccc"}},
		{name: "duplicates collapse", blocks: "blocks: [mm-bbbbb, mm-bbbbb]\n", want: BlockSet{"mm-bbbbb"}},
		{name: "malformed id dropped", blocks: "blocks: [mm-bbbbb, Not-An-Id]\n", want: BlockSet{"mm-bbbbb"}, wantDropped: 1},
		{name: "self reference dropped", blocks: "blocks: [mm-abcde, mm-ccccc]\n", want: BlockSet{"mm-ccccc"}, wantDropped: 1},
		{name: "number dropped", blocks: "blocks: 12345\n", want: nil, wantDropped: 1},
		{name: "nested list item dropped", blocks: "blocks: [[mm-bbbbb], mm-ccccc]\n", want: BlockSet{"mm-ccccc"}, wantDropped: 1},
		{name: "mapping dropped", blocks: "blocks: {id: mm-bbbbb}\n", want: nil, wantDropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := head + tt.blocks + "---\n"
			e, dropped, err := DecodeReport("mm-abcde", []byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Blocks)
			assert.Len(t, dropped, tt.wantDropped, "dropped: %v", dropped)
		})
	}
}

func TestBlockSet(t *testing.T) {
	var b BlockSet
	b = b.Add("mm-aaaaa")
	b = b.Add("mm-bbbbb")
	b = b.Add("mm-aaaaa")
	assert.Equal(t, BlockSet{"mm-aaaaa", "mm-bbbbb"}, b)
	assert.True(t, b.Contains("mm-bbbbb"))

	c := b.Clone()
	c = c.Remove("mm-aaaaa")
	assert.Equal(t, BlockSet{"mm-bbbbb"}, c)
	assert.Equal(t, 2, b.Len(), "Remove must not modify the original")

	assert.Nil(t, c.Remove("mm-bbbbb"))
}
