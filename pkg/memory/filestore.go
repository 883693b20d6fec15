package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/natefinch/atomic"

	"github.com/entrhq/mem/pkg/security/workspace"
)

var timeNow = time.Now // injected for testability

// now returns the stamp used for created/closedAt: UTC, millisecond precision.
func now() time.Time {
	return timeNow().UTC().Truncate(time.Millisecond)
}

const entryExt = ".md"

// FileStore is a local file-system implementation of Store. Each entry is a
// Markdown file with YAML front-matter named <id>.md inside one directory.
//
// FileStore takes no locks. Concurrent processes against the same directory
// are not coordinated; merging is left to version control.
type FileStore struct {
	dir   string
	guard *workspace.Guard
	ids   *Generator
}

// NewFileStore returns a store over dir. The directory is created on the
// first write; a missing directory reads as an empty store.
func NewFileStore(dir string, ids *Generator) (*FileStore, error) {
	if ids == nil {
		return nil, fmt.Errorf("memory: nil id generator")
	}
	guard, err := workspace.NewGuard(dir)
	if err != nil {
		return nil, fmt.Errorf("memory: init directory %s: %w", dir, err)
	}
	return &FileStore{dir: guard.Root(), guard: guard, ids: ids}, nil
}

// Dir returns the absolute entries directory.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) pathForID(id string) (string, error) {
	if err := CheckID(id); err != nil {
		return "", err
	}
	path, err := fs.guard.Join(id + entryExt)
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	return path, nil
}

// write persists e atomically, replacing any existing file for its id.
func (fs *FileStore) write(e *Entry) error {
	b, err := Encode(e)
	if err != nil {
		return err
	}
	path, err := fs.pathForID(e.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(fs.dir, 0o750); err != nil {
		return fmt.Errorf("memory: init directory %s: %w", fs.dir, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("memory: write %s: %w", path, err)
	}
	return nil
}

func (fs *FileStore) remove(id string) error {
	path, err := fs.pathForID(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("memory: remove %s: %w", path, err)
	}
	return nil
}

// Get reads one entry. It returns ErrNotFound if there is no file for id.
func (fs *FileStore) Get(_ context.Context, id string) (*Entry, error) {
	path, err := fs.pathForID(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("memory: read %s: %w", path, err)
	}
	return Decode(id, b)
}

func (fs *FileStore) getTyped(ctx context.Context, id string, want Type) (*Entry, error) {
	e, err := fs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Type != want {
		return nil, wrongType(id, e.Type, want)
	}
	return e, nil
}

// List returns every decodable entry, newest first. Corrupt or unreadable
// files are skipped, and a missing directory yields an empty list.
func (fs *FileStore) List(_ context.Context, opts ListOptions) ([]*Entry, error) {
	var matcher glob.Glob
	if opts.Match != "" {
		g, err := glob.Compile(opts.Match)
		if err != nil {
			return nil, fmt.Errorf("memory: invalid match pattern '%s': %w", opts.Match, err)
		}
		matcher = g
	}

	dirEntries, err := os.ReadDir(fs.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: list %s: %w", fs.dir, err)
	}

	var out []*Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != entryExt {
			continue
		}
		id := strings.TrimSuffix(name, entryExt)
		filePath := filepath.Join(fs.dir, name)
		b, err := os.ReadFile(filePath)
		if err != nil {
			slog.Debug("memory: skipping unreadable entry file", "path", filePath, "err", err)
			continue
		}
		e, err := Decode(id, b)
		if err != nil {
			slog.Debug("memory: skipping corrupt entry file", "path", filePath, "err", err)
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if matcher != nil && !matcher.Match(e.ID) && !matcher.Match(e.Title) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// noteBytes sums note content sizes, leaving out the ids in exclude.
func (fs *FileStore) noteBytes(ctx context.Context, exclude ...string) (int, error) {
	notes, err := fs.List(ctx, ListOptions{Type: TypeNote})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range notes {
		if containsID(exclude, n.ID) {
			continue
		}
		total += n.ContentBytes()
	}
	return total, nil
}

// NoteBudget reports the current aggregate note size.
func (fs *FileStore) NoteBudget(ctx context.Context) (Budget, error) {
	used, err := fs.noteBytes(ctx)
	if err != nil {
		return Budget{}, err
	}
	return newBudget(used), nil
}

// checkBudget computes the note total after adding content, with the notes
// in exclude removed, and fails if it would pass the hard limit.
func (fs *FileStore) checkBudget(ctx context.Context, content string, exclude ...string) (Budget, error) {
	used, err := fs.noteBytes(ctx, exclude...)
	if err != nil {
		return Budget{}, err
	}
	b := newBudget(used + len(content))
	if b.Used > b.Hard {
		return b, fmt.Errorf("%w: total would be %d bytes (limit %d)", ErrHardLimitExceeded, b.Used, b.Hard)
	}
	if b.Warn() {
		slog.Warn("memory: note content past soft limit", "bytes", b.Used, "soft", b.Soft, "hard", b.Hard)
	}
	return b, nil
}

func requireContent(kind Type, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: %s content cannot be empty", ErrInvalidEntry, kind)
	}
	return content, nil
}

// CreateNote writes a new note. It fails with ErrHardLimitExceeded, writing
// nothing, when the aggregate note size would pass HardLimitBytes. The
// returned Budget reports the soft-limit warning.
func (fs *FileStore) CreateNote(ctx context.Context, content string) (*Entry, Budget, error) {
	content, err := requireContent(TypeNote, content)
	if err != nil {
		return nil, Budget{}, err
	}
	budget, err := fs.checkBudget(ctx, content)
	if err != nil {
		return nil, budget, err
	}
	e := &Entry{
		ID:      fs.ids.Generate(),
		Type:    TypeNote,
		Content: content,
		Created: now(),
	}
	if err := fs.write(e); err != nil {
		return nil, budget, err
	}
	return e, budget, nil
}

// CreatePuzzle writes a new open puzzle. When blocksID is given, the new
// puzzle blocks that puzzle, which must already exist.
func (fs *FileStore) CreatePuzzle(ctx context.Context, title, description, blocksID string) (*Entry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: puzzle title cannot be empty", ErrInvalidEntry)
	}
	e := &Entry{
		ID:      fs.ids.Generate(),
		Type:    TypePuzzle,
		Title:   title,
		Content: strings.TrimSpace(description),
		Status:  StatusOpen,
		Created: now(),
	}
	if blocksID != "" {
		if _, err := fs.getTyped(ctx, blocksID, TypePuzzle); err != nil {
			return nil, err
		}
		e.Blocks = NewBlockSet(blocksID)
	}
	if err := fs.write(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateFeedback writes a new feedback entry. Feedback is not size-limited.
func (fs *FileStore) CreateFeedback(_ context.Context, content string) (*Entry, error) {
	content, err := requireContent(TypeFeedback, content)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		ID:      fs.ids.Generate(),
		Type:    TypeFeedback,
		Content: content,
		Created: now(),
	}
	if err := fs.write(e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateNote rewrites the content of an existing note, keeping its id and
// created time. The note's old content does not count against the new total.
func (fs *FileStore) UpdateNote(ctx context.Context, id, content string) (*Entry, Budget, error) {
	e, err := fs.getTyped(ctx, id, TypeNote)
	if err != nil {
		return nil, Budget{}, err
	}
	content, err = requireContent(TypeNote, content)
	if err != nil {
		return nil, Budget{}, err
	}
	budget, err := fs.checkBudget(ctx, content, id)
	if err != nil {
		return nil, budget, err
	}
	e.Content = content
	if err := fs.write(e); err != nil {
		return nil, budget, err
	}
	return e, budget, nil
}

// Delete removes a note or puzzle. Feedback is only removed by ClearFeedback.
func (fs *FileStore) Delete(ctx context.Context, id string) error {
	e, err := fs.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.Type != TypeNote && e.Type != TypePuzzle {
		return &WrongTypeError{ID: id, Got: e.Type, Want: []Type{TypeNote, TypePuzzle}}
	}
	return fs.remove(id)
}

// ReplaceNotes swaps a set of notes for one new note. Every id is checked
// before anything changes. The new note is written before the old ones are
// removed, so an interruption leaves duplicated content rather than losing it.
func (fs *FileStore) ReplaceNotes(ctx context.Context, ids []string, content string) (*Entry, Budget, error) {
	if len(ids) == 0 {
		return nil, Budget{}, fmt.Errorf("%w: replace needs at least one note id", ErrInvalidID)
	}
	var unique []string
	for _, id := range ids {
		if containsID(unique, id) {
			continue
		}
		if _, err := fs.getTyped(ctx, id, TypeNote); err != nil {
			return nil, Budget{}, err
		}
		unique = append(unique, id)
	}

	content, err := requireContent(TypeNote, content)
	if err != nil {
		return nil, Budget{}, err
	}
	budget, err := fs.checkBudget(ctx, content, unique...)
	if err != nil {
		return nil, budget, err
	}

	e := &Entry{
		ID:      fs.ids.Generate(),
		Type:    TypeNote,
		Content: content,
		Created: now(),
	}
	if err := fs.write(e); err != nil {
		return nil, budget, err
	}
	for _, id := range unique {
		if err := fs.remove(id); err != nil {
			return e, budget, fmt.Errorf("memory: replace wrote %s but could not remove %s: %w", e.ID, id, err)
		}
	}
	return e, budget, nil
}

// ClearFeedback removes every feedback entry and returns how many were removed.
func (fs *FileStore) ClearFeedback(ctx context.Context) (int, error) {
	feedback, err := fs.List(ctx, ListOptions{Type: TypeFeedback})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range feedback {
		if err := fs.remove(e.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// UpdatePuzzleStatus opens or closes a puzzle. Closing stamps closedAt;
// reopening clears it.
func (fs *FileStore) UpdatePuzzleStatus(ctx context.Context, id string, status Status) (*Entry, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown puzzle status %q", ErrInvalidEntry, status)
	}
	e, err := fs.getTyped(ctx, id, TypePuzzle)
	if err != nil {
		return nil, err
	}
	e.Status = status
	switch status {
	case StatusClosed:
		closedAt := now()
		e.ClosedAt = &closedAt
	case StatusOpen:
		e.ClosedAt = nil
	}
	if err := fs.write(e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdatePuzzleBlocks changes which puzzles id blocks. Adding a relationship
// requires the target to be an existing puzzle. Cycles are not checked here;
// graph traversals guard against them when reading.
func (fs *FileStore) UpdatePuzzleBlocks(ctx context.Context, id, targetID string, mode BlocksMode) (*Entry, error) {
	e, err := fs.getTyped(ctx, id, TypePuzzle)
	if err != nil {
		return nil, err
	}
	if targetID != "" {
		if err := CheckID(targetID); err != nil {
			return nil, err
		}
		if targetID == id {
			return nil, fmt.Errorf("%w: puzzle %s cannot block itself", ErrInvalidEntry, id)
		}
	}

	switch mode {
	case BlocksSet:
		if targetID == "" {
			e.Blocks = nil
			break
		}
		if _, err := fs.getTyped(ctx, targetID, TypePuzzle); err != nil {
			return nil, err
		}
		e.Blocks = NewBlockSet(targetID)
	case BlocksAppend:
		if targetID == "" {
			return nil, fmt.Errorf("%w: append needs a target puzzle id", ErrInvalidID)
		}
		if _, err := fs.getTyped(ctx, targetID, TypePuzzle); err != nil {
			return nil, err
		}
		e.Blocks = e.Blocks.Add(targetID)
	case BlocksRemove:
		if targetID == "" {
			e.Blocks = nil
			break
		}
		e.Blocks = e.Blocks.Remove(targetID)
	default:
		return nil, fmt.Errorf("memory: unknown blocks mode %q", mode)
	}

	if err := fs.write(e); err != nil {
		return nil, err
	}
	return e, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var _ Store = (*FileStore)(nil)
