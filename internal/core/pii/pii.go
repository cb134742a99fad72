// Package pii replaces sensitive fields with one way hashes before rows
// leave the pipeline. Hashing is deterministic and unsalted on purpose: the
// same contact must map to the same pseudonymous key on every upload so the
// warehouse can de-duplicate across runs
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"donorpipe/internal/core/tabular"
)

// NameColumn is the source column that splits into first and last name
const NameColumn = "Contact Name"

// Spec lists which canonical columns are sensitive. Zero value means the
// default contribution report spec
type Spec struct {
	// Columns hashed in place
	Hashed []string
	// NameSource, when present in a row, is split on the first whitespace
	// run and hashed into FirstTarget and LastTarget, then removed
	NameSource  string
	FirstTarget string
	LastTarget  string
}

// Default is the contribution report sensitive field spec
func Default() Spec {
	return Spec{
		Hashed:      []string{"email", "phone", "first_name", "last_name"},
		NameSource:  NameColumn,
		FirstTarget: "first_name",
		LastTarget:  "last_name",
	}
}

// None is a spec that hashes nothing, for reports without PII columns
func None() Spec { return Spec{} }

// Hash returns the lower case hex SHA-256 of the trimmed value, or "" when
// the trimmed value is empty. Empty in, empty out: a blank cell must never
// turn into the fixed digest of the empty string
func Hash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}

// SplitName splits a full name on the first whitespace run. A single token
// becomes the first name with an empty last name
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	if i := strings.IndexFunc(full, isSpace); i >= 0 {
		return full[:i], strings.TrimLeftFunc(full[i:], isSpace)
	}
	return full, ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == ' '
}

// Apply hashes the sensitive fields of every row in place of their raw
// values. The input table is mutated; callers clone first when they need the
// original (the orchestrator owns its intermediate tables exclusively)
func (s Spec) Apply(t *tabular.Table) {
	nameIdx := -1
	for i, col := range t.Columns {
		if s.NameSource != "" && col == s.NameSource {
			nameIdx = i
		}
	}

	for _, row := range t.Rows {
		if s.NameSource != "" {
			if full, ok := row[s.NameSource]; ok {
				first, last := SplitName(full)
				row[s.FirstTarget] = first
				row[s.LastTarget] = last
				delete(row, s.NameSource)
			}
		}
		for _, col := range s.Hashed {
			if v, ok := row[col]; ok {
				row[col] = Hash(v)
			}
		}
	}

	if nameIdx >= 0 {
		cols := make([]string, 0, len(t.Columns)+1)
		cols = append(cols, t.Columns[:nameIdx]...)
		cols = append(cols, s.FirstTarget, s.LastTarget)
		cols = append(cols, t.Columns[nameIdx+1:]...)
		t.Columns = dedupe(cols)
	}
}

// dedupe keeps the first occurrence of each column name
func dedupe(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
