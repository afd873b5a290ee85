// Package extensions models the extensions.json snapshot a profile stores
// remotely, and the diff between a snapshot and what is installed locally.
package extensions

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SchemaVersion is the snapshot schema written and understood by this
// client.
const SchemaVersion = 1

// Extension is one editor extension identified by its marketplace id.
type Extension struct {
	ID        string `json:"id"`
	Version   string `json:"version,omitempty"`
	IsBuiltin bool   `json:"isBuiltin,omitempty"`
}

// Snapshot is a point-in-time list of non-builtin extensions, sorted by id
// for deterministic uploads. It is recomputed wholesale on every upload,
// never mutated remotely.
type Snapshot struct {
	SchemaVersion int         `json:"schemaVersion"`
	GeneratedAt   time.Time   `json:"generatedAt"`
	Extensions    []Extension `json:"extensions"`
}

// NewSnapshot builds a snapshot from the installed set, dropping builtins
// and sorting by id.
func NewSnapshot(installed []Extension, now time.Time) Snapshot {
	kept := make([]Extension, 0, len(installed))
	for _, ext := range installed {
		if ext.IsBuiltin {
			continue
		}
		kept = append(kept, ext)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].ID < kept[j].ID })

	return Snapshot{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   now.UTC(),
		Extensions:    kept,
	}
}

// Parse parses extensions.json bytes, requiring the current schema
// version.
func Parse(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parsing extensions snapshot: %w", err)
	}
	if s.SchemaVersion != SchemaVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot schema version %d", s.SchemaVersion)
	}
	return s, nil
}

// Marshal serializes a snapshot to the interoperable extensions.json form.
func Marshal(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding extensions snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Diff represents the difference between a remote snapshot and the locally
// installed extensions.
type Diff struct {
	Synced    []string // in both the snapshot and the local install
	Missing   []string // in the snapshot but not installed locally
	Untracked []string // installed locally but not in the snapshot
}

// ComputeDiff compares a snapshot against the installed set. Builtins on
// the installed side are ignored, matching what uploads record.
func ComputeDiff(snapshot Snapshot, installed []Extension) Diff {
	installedSet := make(map[string]bool, len(installed))
	for _, ext := range installed {
		if ext.IsBuiltin {
			continue
		}
		installedSet[ext.ID] = true
	}
	snapshotSet := make(map[string]bool, len(snapshot.Extensions))

	var diff Diff
	for _, ext := range snapshot.Extensions {
		snapshotSet[ext.ID] = true
		if installedSet[ext.ID] {
			diff.Synced = append(diff.Synced, ext.ID)
		} else {
			diff.Missing = append(diff.Missing, ext.ID)
		}
	}
	for _, ext := range installed {
		if ext.IsBuiltin || snapshotSet[ext.ID] {
			continue
		}
		diff.Untracked = append(diff.Untracked, ext.ID)
	}
	sort.Strings(diff.Untracked)

	return diff
}
