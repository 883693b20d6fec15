// Package memory provides the persistent data layer for project memory entries.
// It defines the entry model, the identifier format, the on-disk file format
// (YAML front-matter followed by a Markdown body), and the file-backed store
// that the puzzle graph and the command layer depend on.
package memory
