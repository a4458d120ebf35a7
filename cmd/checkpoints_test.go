package main

import (
	"testing"
	"time"

	"github.com/Blimpyway/sdr-machine/internal/store"
)

func testManifestAt(runID string, ts time.Time) *store.Manifest {
	return &store.Manifest{
		RunID:     runID,
		Kind:      store.KindDyadic,
		N:         200,
		P:         20,
		ElemBytes: 1,
		ElemCount: 100,
		Timestamp: ts,
	}
}

func TestSelectCheckpointsForDeletion_ByAge(t *testing.T) {
	now := time.Now()
	manifests := []*store.Manifest{
		testManifestAt("run1", now.AddDate(0, 0, -10)),
		testManifestAt("run2", now.AddDate(0, 0, -5)),
		testManifestAt("run3", now.AddDate(0, 0, -1)),
		testManifestAt("run4", now.AddDate(0, 0, -30)),
	}

	toDelete := selectCheckpointsForDeletion(manifests, 0, 7)

	if len(toDelete) != 2 {
		t.Errorf("expected 2 checkpoints to delete, got %d", len(toDelete))
	}

	found10, found30 := false, false
	for _, m := range toDelete {
		if m.RunID == "run1" {
			found10 = true
		}
		if m.RunID == "run4" {
			found30 = true
		}
	}
	if !found10 || !found30 {
		t.Error("expected run1 and run4 to be selected for deletion")
	}
}

func TestSelectCheckpointsForDeletion_ByCount(t *testing.T) {
	now := time.Now()
	manifests := []*store.Manifest{
		testManifestAt("run1", now.AddDate(0, 0, -10)),
		testManifestAt("run2", now.AddDate(0, 0, -5)),
		testManifestAt("run3", now.AddDate(0, 0, -1)),
		testManifestAt("run4", now.AddDate(0, 0, -30)),
	}

	toDelete := selectCheckpointsForDeletion(manifests, 2, 0)

	if len(toDelete) != 2 {
		t.Errorf("expected 2 checkpoints to delete, got %d", len(toDelete))
	}

	found30, found10 := false, false
	for _, m := range toDelete {
		if m.RunID == "run4" {
			found30 = true
		}
		if m.RunID == "run1" {
			found10 = true
		}
	}
	if !found30 || !found10 {
		t.Error("expected run4 and run1 (oldest) to be selected for deletion")
	}
}

func TestSelectCheckpointsForDeletion_Combined(t *testing.T) {
	now := time.Now()
	manifests := []*store.Manifest{
		testManifestAt("run1", now.AddDate(0, 0, -10)),
		testManifestAt("run2", now.AddDate(0, 0, -5)),
		testManifestAt("run3", now.AddDate(0, 0, -1)),
		testManifestAt("run4", now.AddDate(0, 0, -30)),
		testManifestAt("run5", now.AddDate(0, 0, -2)),
	}

	toDelete := selectCheckpointsForDeletion(manifests, 3, 7)

	if len(toDelete) < 2 {
		t.Errorf("expected at least 2 checkpoints to delete, got %d", len(toDelete))
	}
}

func TestSelectCheckpointsForDeletion_NoDuplicates(t *testing.T) {
	now := time.Now()
	manifests := []*store.Manifest{
		testManifestAt("run1", now.AddDate(0, 0, -30)),
		testManifestAt("run2", now.AddDate(0, 0, -20)),
	}

	// run1 matches both the age cutoff and the keep-last cutoff; it must
	// only appear once in the result.
	toDelete := selectCheckpointsForDeletion(manifests, 1, 7)

	count := 0
	for _, m := range toDelete {
		if m.RunID == "run1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("run1 appeared %d times in toDelete, want 1", count)
	}
}

func TestCheckpointsListCommand_NoCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()

	originalDataDir := checkpointDataDir
	checkpointDataDir = tmpDir
	defer func() { checkpointDataDir = originalDataDir }()

	if err := runListCheckpoints(nil, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCheckpointsListCommand_WithCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	m := testManifestAt("run-a", time.Now())
	if err := s.SaveRawTable(m, make([]uint8, m.ElemCount)); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	originalDataDir := checkpointDataDir
	checkpointDataDir = tmpDir
	defer func() { checkpointDataDir = originalDataDir }()

	if err := runListCheckpoints(nil, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestCheckpointsCleanCommand_NoFlags(t *testing.T) {
	tmpDir := t.TempDir()

	originalDataDir := checkpointDataDir
	checkpointDataDir = tmpDir
	defer func() { checkpointDataDir = originalDataDir }()

	keepLast = 0
	olderThanDays = 0

	if err := runCleanCheckpoints(nil, nil); err == nil {
		t.Error("expected error when no flags specified")
	}
}

func TestCheckpointsCleanCommand_WithForce(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	m := testManifestAt("old-run", time.Now().AddDate(0, 0, -30))
	if err := s.SaveRawTable(m, make([]uint8, m.ElemCount)); err != nil {
		t.Fatalf("failed to save checkpoint: %v", err)
	}

	originalDataDir := checkpointDataDir
	checkpointDataDir = tmpDir
	defer func() { checkpointDataDir = originalDataDir }()

	keepLast = 0
	olderThanDays = 7
	forceClean = true

	if err := runCleanCheckpoints(nil, nil); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if _, _, err := s.LoadRawTable("old-run"); err == nil {
		t.Error("expected checkpoint to be deleted")
	}
}
