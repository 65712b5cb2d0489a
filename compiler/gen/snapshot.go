package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// snapshotFile is written next to the generated projects and lets a
// later run skip regeneration when the schema did not change.
const snapshotFile = ".cocogen.snapshot"

// Snapshot records the inputs and the synthesized naming decisions of
// one generation run.
type Snapshot struct {
	// Digest is the hash of the canonicalized schema.
	Digest string `msgpack:"digest"`
	// Derived are the synthesized types, kept so naming decisions can
	// be inspected without re-running synthesis.
	Derived []*DerivedType `msgpack:"derived"`
	// Aliases are the per-target display names of every emitted type.
	Aliases []Alias `msgpack:"aliases"`
}

// Snapshot builds the snapshot of this run.
func (g *Graph) Snapshot() (*Snapshot, error) {
	digest, err := schemaDigest(g)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Digest:  digest,
		Derived: g.Derived,
		Aliases: g.Aliases.Aliases(),
	}, nil
}

// Unchanged reports whether the stored snapshot in dir carries the
// same schema digest as this run. A missing or unreadable snapshot
// counts as changed.
func (g *Graph) Unchanged(dir string) bool {
	prev, err := ReadSnapshot(dir)
	if err != nil {
		return false
	}
	digest, err := schemaDigest(g)
	if err != nil {
		return false
	}
	return prev.Digest == digest
}

// schemaDigest hashes the canonical serialization of the schema.
func schemaDigest(g *Graph) (string, error) {
	buf, err := yaml.Marshal(g.Schema)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// ReadSnapshot loads the snapshot stored in dir.
func ReadSnapshot(dir string) (*Snapshot, error) {
	buf, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		return nil, err
	}
	s := &Snapshot{}
	if err := msgpack.Unmarshal(buf, s); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteFile stores the snapshot in dir.
func (s *Snapshot) WriteFile(dir string) error {
	buf, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, snapshotFile), buf, 0644)
}
