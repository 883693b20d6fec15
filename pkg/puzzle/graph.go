// Package puzzle interprets the blocks relationship between puzzle entries.
// It derives ready/blocked/closed state, walks blocker chains upward and
// blocked subtrees downward, and renders those walks as indented text.
//
// An edge A -> B exists when A's blocks set contains B: A must close before
// B can be ready. The graph is not guaranteed to be acyclic, so every walk
// keeps a visited set and stops at the first repeated puzzle.
package puzzle

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/entrhq/mem/pkg/memory"
)

// State is the derived readiness of a puzzle. It is never persisted.
type State string

const (
	StateReady   State = "ready"
	StateBlocked State = "blocked"
	StateClosed  State = "closed"
)

// Node is one puzzle in a descendant walk, with its distance from the root.
type Node struct {
	Entry *memory.Entry
	Depth int
}

// Graph is a read-only snapshot of the puzzles in a store. Build a new one
// after mutations; states are computed from the snapshot on every call.
type Graph struct {
	puzzles  map[string]*memory.Entry
	others   map[string]memory.Type
	newest   []*memory.Entry     // puzzles, newest first
	blockers map[string][]string // target id -> blocker ids, oldest first
}

// New builds a graph from entries. Non-puzzle entries are only remembered so
// that lookups can report ErrWrongType.
func New(entries []*memory.Entry) *Graph {
	g := &Graph{
		puzzles:  make(map[string]*memory.Entry),
		others:   make(map[string]memory.Type),
		blockers: make(map[string][]string),
	}
	for _, e := range entries {
		if !e.IsPuzzle() {
			g.others[e.ID] = e.Type
			continue
		}
		g.puzzles[e.ID] = e
		g.newest = append(g.newest, e)
	}

	sort.Slice(g.newest, func(i, j int) bool {
		a, b := g.newest[i], g.newest[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.ID < b.ID
	})

	for i := len(g.newest) - 1; i >= 0; i-- {
		p := g.newest[i]
		for _, target := range p.Blocks {
			g.blockers[target] = append(g.blockers[target], p.ID)
		}
	}
	return g
}

// Load builds a graph from every entry in store.
func Load(ctx context.Context, store memory.Store) (*Graph, error) {
	entries, err := store.List(ctx, memory.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("puzzle: load: %w", err)
	}
	return New(entries), nil
}

// Get returns the puzzle with the given id, or ErrNotFound / ErrWrongType.
func (g *Graph) Get(id string) (*memory.Entry, error) {
	if err := memory.CheckID(id); err != nil {
		return nil, err
	}
	if p, ok := g.puzzles[id]; ok {
		return p, nil
	}
	if t, ok := g.others[id]; ok {
		return nil, &memory.WrongTypeError{ID: id, Got: t, Want: []memory.Type{memory.TypePuzzle}}
	}
	return nil, fmt.Errorf("%w: %s", memory.ErrNotFound, id)
}

// Puzzles returns every puzzle, newest first.
func (g *Graph) Puzzles() []*memory.Entry {
	out := make([]*memory.Entry, len(g.newest))
	copy(out, g.newest)
	return out
}

// Classify derives the state of p: closed if p is closed, blocked if any
// open puzzle blocks it, ready otherwise. Non-puzzles have no state.
func (g *Graph) Classify(p *memory.Entry) State {
	switch {
	case !p.IsPuzzle():
		return ""
	case p.Status == memory.StatusClosed:
		return StateClosed
	case len(g.openBlockers(p.ID)) > 0:
		return StateBlocked
	default:
		return StateReady
	}
}

// State looks up id and classifies it.
func (g *Graph) State(id string) (State, error) {
	p, err := g.Get(id)
	if err != nil {
		return "", err
	}
	return g.Classify(p), nil
}

// BlockersOf returns the open puzzles whose blocks set contains id, oldest first.
func (g *Graph) BlockersOf(id string) ([]string, error) {
	if _, err := g.Get(id); err != nil {
		return nil, err
	}
	return g.openBlockers(id), nil
}

func (g *Graph) openBlockers(id string) []string {
	var out []string
	for _, b := range g.blockers[id] {
		if p := g.puzzles[b]; p != nil && p.IsOpen() {
			out = append(out, b)
		}
	}
	return out
}

// primaryBlocker is the oldest puzzle, open or closed, that blocks id.
func (g *Graph) primaryBlocker(id string) (*memory.Entry, bool) {
	for _, b := range g.blockers[id] {
		if p := g.puzzles[b]; p != nil {
			return p, true
		}
	}
	return nil, false
}

// Ready returns open puzzles with no open blockers, newest first.
func (g *Graph) Ready() []*memory.Entry {
	return g.withState(StateReady)
}

// Blocked returns open puzzles with at least one open blocker, newest first.
func (g *Graph) Blocked() []*memory.Entry {
	return g.withState(StateBlocked)
}

// Closed returns closed puzzles, newest first.
func (g *Graph) Closed() []*memory.Entry {
	return g.withState(StateClosed)
}

// Open returns every open puzzle, ready or blocked, newest first.
func (g *Graph) Open() []*memory.Entry {
	var out []*memory.Entry
	for _, p := range g.newest {
		if p.IsOpen() {
			out = append(out, p)
		}
	}
	return out
}

func (g *Graph) withState(s State) []*memory.Entry {
	var out []*memory.Entry
	for _, p := range g.newest {
		if g.Classify(p) == s {
			out = append(out, p)
		}
	}
	return out
}

// AncestorChain follows primary blockers upward from rootID and returns the
// chain top-most first, without the root. The walk ends at a puzzle nobody
// blocks, or at the first puzzle already on the chain.
func (g *Graph) AncestorChain(rootID string) ([]*memory.Entry, error) {
	if _, err := g.Get(rootID); err != nil {
		return nil, err
	}

	visited := map[string]bool{rootID: true}
	var chain []*memory.Entry
	current := rootID
	for {
		p, ok := g.primaryBlocker(current)
		if !ok {
			break
		}
		if visited[p.ID] {
			slog.Debug("puzzle: blocks cycle, truncating ancestor chain", "root", rootID, "at", p.ID)
			break
		}
		visited[p.ID] = true
		chain = append(chain, p)
		current = p.ID
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// DescendantSubtree returns every puzzle transitively blocked by rootID in
// pre-order, children in blocks-set order. Each puzzle appears once, under
// the first parent that reaches it. Ids that do not resolve to a puzzle are
// skipped.
func (g *Graph) DescendantSubtree(rootID string) ([]Node, error) {
	root, err := g.Get(rootID)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{rootID: true}
	var out []Node
	var walk func(p *memory.Entry, depth int)
	walk = func(p *memory.Entry, depth int) {
		for _, id := range p.Blocks {
			child, ok := g.puzzles[id]
			if !ok {
				continue
			}
			if visited[id] {
				slog.Debug("puzzle: already visited, not descending again", "root", rootID, "at", id)
				continue
			}
			visited[id] = true
			out = append(out, Node{Entry: child, Depth: depth})
			walk(child, depth+1)
		}
	}
	walk(root, 1)
	return out, nil
}
