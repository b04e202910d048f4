// Package schema turns extracted metadata into a canonical structure,
// fingerprints it, and describes changes between observations.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/extract"
)

// Fixed summaries for the two unchanged cases.
const (
	FirstSnapshotSummary = "first snapshot"
	NoChangeSummary      = "no changes detected"
)

// structureModifiedSummary covers a fingerprint change with no
// per-object-type count delta (e.g. a column rename).
const structureModifiedSummary = "structure modified"

// CanonicalTable is one table reduced to its structural attributes.
type CanonicalTable struct {
	Name        string   `json:"name"`
	Columns     []string `json:"columns"`
	Constraints int      `json:"constraints"`
}

// Canonical is a deterministic reduction of a schema document: every
// list is sorted, every column is a "name:type" pair, and nothing else
// from the source document survives. Equal databases always canonicalize
// to equal values regardless of extraction ordering.
type Canonical struct {
	Tables     []CanonicalTable `json:"tables"`
	Views      []string         `json:"views"`
	Procedures []string         `json:"procedures"`
	Functions  []string         `json:"functions"`
}

// Canonicalize reduces an extracted database to its canonical form.
func Canonicalize(db *extract.Database) Canonical {
	c := Canonical{
		Tables:     make([]CanonicalTable, 0, len(db.Tables)),
		Views:      make([]string, 0, len(db.Views)),
		Procedures: make([]string, 0, len(db.Procedures)),
		Functions:  make([]string, 0, len(db.Functions)),
	}

	for _, t := range db.Tables {
		cols := make([]string, 0, len(t.Columns))
		for _, col := range t.Columns {
			cols = append(cols, col.Name+":"+col.DataType)
		}
		sort.Strings(cols)
		c.Tables = append(c.Tables, CanonicalTable{
			Name:        t.QualifiedName(),
			Columns:     cols,
			Constraints: t.ConstraintCount,
		})
	}
	sort.Slice(c.Tables, func(i, j int) bool { return c.Tables[i].Name < c.Tables[j].Name })

	for _, v := range db.Views {
		c.Views = append(c.Views, v.QualifiedName())
	}
	sort.Strings(c.Views)

	for _, p := range db.Procedures {
		c.Procedures = append(c.Procedures, p.QualifiedName())
	}
	sort.Strings(c.Procedures)

	for _, f := range db.Functions {
		c.Functions = append(c.Functions, f.QualifiedName())
	}
	sort.Strings(c.Functions)

	return c
}

// Fingerprint is a stable hex digest of the canonical structure. Two
// calls on equal values always produce the same fingerprint.
func (c Canonical) Fingerprint() string {
	// Struct fields marshal in declaration order and every slice is
	// sorted, so the encoding is deterministic.
	encoded, err := json.Marshal(c)
	if err != nil {
		// Canonical contains only strings, ints and slices; Marshal
		// cannot fail on it.
		panic(fmt.Sprintf("schema: marshal canonical form: %v", err))
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// Counts tallies the canonical objects by type.
func (c Canonical) Counts() domain.ObjectCounts {
	return domain.ObjectCounts{
		Tables:     len(c.Tables),
		Views:      len(c.Views),
		Procedures: len(c.Procedures),
		Functions:  len(c.Functions),
	}
}

// ChangeSummary describes the difference between two observations as
// per-object-type count deltas, e.g. "tables: +2, views: -1". When the
// counts match (a rename or an in-place definition change), it reports
// the structure as modified.
func ChangeSummary(prev, cur domain.ObjectCounts) string {
	deltas := []struct {
		label string
		diff  int
	}{
		{"tables", cur.Tables - prev.Tables},
		{"views", cur.Views - prev.Views},
		{"procedures", cur.Procedures - prev.Procedures},
		{"functions", cur.Functions - prev.Functions},
	}

	parts := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if d.diff == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %+d", d.label, d.diff))
	}
	if len(parts) == 0 {
		return structureModifiedSummary
	}
	return strings.Join(parts, ", ")
}
