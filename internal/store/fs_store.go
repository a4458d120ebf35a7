package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore persists raw table snapshots under <baseDir>/<runID>/, writing a
// JSON manifest alongside a raw little-endian dump of the backing array.
// Thread-safety follows the teacher's FSStore: atomic temp-file + rename,
// no locks needed across goroutines.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-based store, creating baseDir if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) runDir(runID string) string {
	return filepath.Join(fs.baseDir, runID)
}

func (fs *FSStore) manifestPath(runID string) string {
	return filepath.Join(fs.runDir(runID), "manifest.json")
}

func (fs *FSStore) tablePath(runID string) string {
	return filepath.Join(fs.runDir(runID), "table.bin")
}

// SaveRawTable atomically writes a manifest and the raw bytes of a uint8
// table (dyadic/triadic counters) to disk.
func (fs *FSStore) SaveRawTable(m *Manifest, table []uint8) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ElemBytes != 1 {
		return &ValidationError{Field: "ElemBytes", Reason: "SaveRawTable writes bytes directly; use SaveInt32Table/SaveUint32Table for wider elements"}
	}
	return fs.save(m, table)
}

// SaveInt32Table atomically writes a manifest and a little-endian dump of an
// int32 table (the bit-pair value map's accumulators).
func (fs *FSStore) SaveInt32Table(m *Manifest, table []int32) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ElemBytes != 4 {
		return &ValidationError{Field: "ElemBytes", Reason: "SaveInt32Table requires ElemBytes == 4"}
	}
	raw := make([]byte, len(table)*4)
	for i, v := range table {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}
	return fs.save(m, raw)
}

// SaveUint32Table atomically writes a manifest and a little-endian dump of a
// uint32 table (the ID-slot payload store).
func (fs *FSStore) SaveUint32Table(m *Manifest, table []uint32) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ElemBytes != 4 {
		return &ValidationError{Field: "ElemBytes", Reason: "SaveUint32Table requires ElemBytes == 4"}
	}
	raw := make([]byte, len(table)*4)
	for i, v := range table {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	return fs.save(m, raw)
}

func (fs *FSStore) save(m *Manifest, raw []byte) error {
	runDir := fs.runDir(m.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	if err := writeAtomic(fs.tablePath(m.RunID), raw, 0644); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}

	manifestJSON, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}
	if err := writeAtomic(fs.manifestPath(m.RunID), manifestJSON, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	slog.Debug("checkpoint saved", "runID", m.RunID, "kind", m.Kind, "dir", runDir)
	return nil
}

// LoadRawTable reads the manifest and raw bytes for runID. Callers are
// expected to check the returned Manifest against CompatibleWith before
// copying raw into an engine's backing array.
func (fs *FSStore) LoadRawTable(runID string) (*Manifest, []byte, error) {
	if runID == "" {
		return nil, nil, fmt.Errorf("runID cannot be empty")
	}

	manifestData, err := os.ReadFile(fs.manifestPath(runID))
	if os.IsNotExist(err) {
		return nil, nil, &NotFoundError{RunID: runID}
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(manifestData, &m); err != nil {
		return nil, nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}

	raw, err := os.ReadFile(fs.tablePath(runID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read table file: %w", err)
	}

	slog.Debug("checkpoint loaded", "runID", runID, "kind", m.Kind)
	return &m, raw, nil
}

// List returns the manifest for every checkpoint under baseDir.
func (fs *FSStore) List() ([]*Manifest, error) {
	entries, err := os.ReadDir(fs.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	var manifests []*Manifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(fs.manifestPath(entry.Name()))
		if err != nil {
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			slog.Warn("skipping unreadable manifest", "runID", entry.Name(), "error", err)
			continue
		}
		manifests = append(manifests, &m)
	}
	return manifests, nil
}

// Delete removes a checkpoint's directory entirely.
func (fs *FSStore) Delete(runID string) error {
	if runID == "" {
		return fmt.Errorf("runID cannot be empty")
	}
	dir := fs.runDir(runID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: runID}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}
	slog.Debug("checkpoint deleted", "runID", runID)
	return nil
}

// writeAtomic writes data to a temp file in the same directory as path and
// renames it into place, so a crash mid-write never leaves a torn file.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ErrNotFound is returned when a requested checkpoint does not exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing checkpoint.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "checkpoint not found: " + e.RunID
	}
	return "checkpoint not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
