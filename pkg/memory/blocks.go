package memory

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// BlockSet is an insertion-ordered set of puzzle ids that a puzzle blocks.
// A nil or empty BlockSet means the puzzle blocks nothing.
type BlockSet []string

// NewBlockSet builds a set from ids, keeping the first occurrence of each.
func NewBlockSet(ids ...string) BlockSet {
	var b BlockSet
	for _, id := range ids {
		b = b.Add(id)
	}
	return b
}

// Contains reports whether id is in the set.
func (b BlockSet) Contains(id string) bool {
	for _, v := range b {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns the set with id appended, unless it is already present.
func (b BlockSet) Add(id string) BlockSet {
	if b.Contains(id) {
		return b
	}
	out := make(BlockSet, len(b), len(b)+1)
	copy(out, b)
	return append(out, id)
}

// Remove returns the set without id. The result is nil when it becomes empty.
func (b BlockSet) Remove(id string) BlockSet {
	var out BlockSet
	for _, v := range b {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent copy, preserving nil.
func (b BlockSet) Clone() BlockSet {
	if b == nil {
		return nil
	}
	out := make(BlockSet, len(b))
	copy(out, b)
	return out
}

// Len returns the number of ids in the set.
func (b BlockSet) Len() int {
	return len(b)
}

// ParseBlocks reads a `blocks` header value leniently. A single string or a
// sequence of strings is accepted; each value must be a well-formed id other
// than owner. Everything else is left out of the set and described in dropped.
// An absent or null node yields an empty set.
func ParseBlocks(node *yaml.Node, owner string) (set BlockSet, dropped []string) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
		return parseBlockItems([]*yaml.Node{node}, owner)
	case yaml.SequenceNode:
		return parseBlockItems(node.Content, owner)
	default:
		return nil, []string{fmt.Sprintf("blocks: unsupported %s value", nodeKindName(node.Kind))}
	}
}

func parseBlockItems(items []*yaml.Node, owner string) (BlockSet, []string) {
	var (
		set     BlockSet
		dropped []string
	)
	for _, item := range items {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			dropped = append(dropped, fmt.Sprintf("blocks: non-string %s value %q", nodeKindName(item.Kind), item.Value))
			continue
		}
		switch {
		case item.Value == "":
			continue
		case !ValidID(item.Value):
			dropped = append(dropped, fmt.Sprintf("blocks: malformed id %q", item.Value))
		case item.Value == owner:
			dropped = append(dropped, fmt.Sprintf("blocks: self reference %q", item.Value))
		default:
			set = set.Add(item.Value)
		}
	}
	return set, dropped
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
