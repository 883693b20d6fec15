package memory

import "context"

const (
	// SoftLimitBytes is the aggregate note size past which writes still
	// succeed but report a warning.
	SoftLimitBytes = 30000

	// HardLimitBytes is the aggregate note size no write may exceed.
	HardLimitBytes = 32768
)

// Budget reports aggregate note content size in UTF-8 bytes.
type Budget struct {
	Used int
	Soft int
	Hard int
}

// Warn reports whether usage is past the soft limit.
func (b Budget) Warn() bool {
	return b.Used > b.Soft
}

// Remaining returns how many bytes may still be added before the hard limit.
func (b Budget) Remaining() int {
	if b.Used >= b.Hard {
		return 0
	}
	return b.Hard - b.Used
}

func newBudget(used int) Budget {
	return Budget{Used: used, Soft: SoftLimitBytes, Hard: HardLimitBytes}
}

// BlocksMode selects how UpdatePuzzleBlocks changes a puzzle's blocks set.
type BlocksMode string

const (
	// BlocksSet replaces the set with the target, or clears it without one.
	BlocksSet BlocksMode = "set"
	// BlocksAppend adds the target to the set.
	BlocksAppend BlocksMode = "append"
	// BlocksRemove drops the target, or clears the set without one.
	BlocksRemove BlocksMode = "remove"
)

// ListOptions filters List results. Zero values mean "no filter".
type ListOptions struct {
	Type  Type   // Only entries of this type
	Match string // Glob matched against id and title
	Limit int    // Maximum entries to return
}

// Store is the read/write interface for persisted entries.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, opts ListOptions) ([]*Entry, error)
	NoteBudget(ctx context.Context) (Budget, error)

	CreateNote(ctx context.Context, content string) (*Entry, Budget, error)
	CreatePuzzle(ctx context.Context, title, description, blocksID string) (*Entry, error)
	CreateFeedback(ctx context.Context, content string) (*Entry, error)

	UpdateNote(ctx context.Context, id, content string) (*Entry, Budget, error)
	ReplaceNotes(ctx context.Context, ids []string, content string) (*Entry, Budget, error)
	UpdatePuzzleStatus(ctx context.Context, id string, status Status) (*Entry, error)
	UpdatePuzzleBlocks(ctx context.Context, id, targetID string, mode BlocksMode) (*Entry, error)

	Delete(ctx context.Context, id string) error
	ClearFeedback(ctx context.Context) (int, error)
}
