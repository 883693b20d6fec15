package memory

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
)

const (
	// idAlphabet is the lowercase RFC 4648 base32 alphabet.
	idAlphabet = "abcdefghijklmnopqrstuvwxyz234567"

	// idSuffixLen is the number of random characters after the prefix.
	idSuffixLen = 5
)

var (
	idPattern     = regexp.MustCompile(`^[a-z0-9]+-[a-z2-7]{5}$`)
	prefixPattern = regexp.MustCompile(`^[a-z0-9]+$`)
)

// ValidID reports whether id has the form <prefix>-<5 base32 chars>.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidPrefix reports whether p can prefix generated identifiers.
func ValidPrefix(p string) bool {
	return prefixPattern.MatchString(p)
}

// CheckID returns an ErrInvalidID error when id is malformed.
func CheckID(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Generator produces entry identifiers for a single project.
// Collisions are not checked against the store; 25 bits of suffix entropy
// is enough for one project's memory.
type Generator struct {
	prefix string
	rand   io.Reader
}

// NewGenerator returns a Generator using the given project prefix and crypto/rand.
func NewGenerator(prefix string) (*Generator, error) {
	return NewGeneratorWithSource(prefix, rand.Reader)
}

// NewGeneratorWithSource is NewGenerator with an explicit randomness source.
func NewGeneratorWithSource(prefix string, src io.Reader) (*Generator, error) {
	if !ValidPrefix(prefix) {
		return nil, fmt.Errorf("memory: invalid id prefix %q", prefix)
	}
	if src == nil {
		src = rand.Reader
	}
	return &Generator{prefix: prefix, rand: src}, nil
}

// Prefix returns the project prefix used for new identifiers.
func (g *Generator) Prefix() string {
	return g.prefix
}

// Generate returns a new identifier. Each suffix character is drawn
// independently and uniformly from the 32-symbol alphabet.
func (g *Generator) Generate() string {
	b := make([]byte, idSuffixLen)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		// The OS entropy source failing is not recoverable.
		panic(fmt.Errorf("memory: read random bytes: %w", err))
	}
	for i := range b {
		// 256 is a multiple of 32, so masking keeps the draw uniform.
		b[i] = idAlphabet[b[i]&0x1f]
	}
	return g.prefix + "-" + string(b)
}
