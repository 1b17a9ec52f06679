package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/todochain/internal/adapters/sqlite"
	"github.com/example/todochain/internal/ports/secondary"
)

const testFingerprint = "0x1111111111111111111111111111111111111111111111111111111111111111"

func TestEscrowStateRepositoryUpsertAndGet(t *testing.T) {
	repo := sqlite.NewEscrowStateRepository(setupTestDB(t))
	ctx := context.Background()

	rec := &secondary.EscrowStateRecord{
		Fingerprint: testFingerprint,
		TaskID:      "TASK-001",
		Version:     1,
		AmountBase:  10_000_000,
		State:       "authorization_required",
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByFingerprint(ctx, testFingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint failed: %v", err)
	}
	if got.TaskID != "TASK-001" || got.AmountBase != 10_000_000 || got.State != "authorization_required" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestEscrowStateRepositorySetState(t *testing.T) {
	repo := sqlite.NewEscrowStateRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Upsert(ctx, &secondary.EscrowStateRecord{
		Fingerprint: testFingerprint, TaskID: "TASK-001", Version: 1,
		AmountBase: 5_000_000, State: "authorized",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := repo.SetState(ctx, testFingerprint, "escrowed", "0xtx1"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	got, err := repo.GetByFingerprint(ctx, testFingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint failed: %v", err)
	}
	if got.State != "escrowed" || got.TxRef != "0xtx1" {
		t.Errorf("unexpected record after SetState: %+v", got)
	}

	// Empty txRef keeps the previous reference.
	if err := repo.SetState(ctx, testFingerprint, "claimed", ""); err != nil {
		t.Fatalf("SetState to claimed failed: %v", err)
	}
	got, err = repo.GetByFingerprint(ctx, testFingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint failed: %v", err)
	}
	if got.State != "claimed" || got.TxRef != "0xtx1" {
		t.Errorf("unexpected record after claim: %+v", got)
	}
}

func TestEscrowStateRepositorySetStateMissing(t *testing.T) {
	repo := sqlite.NewEscrowStateRepository(setupTestDB(t))

	if err := repo.SetState(context.Background(), "0xmissing", "escrowed", ""); err == nil {
		t.Error("expected error for unknown fingerprint")
	}
}

func TestEscrowStateRepositoryListByTaskAndActive(t *testing.T) {
	repo := sqlite.NewEscrowStateRepository(setupTestDB(t))
	ctx := context.Background()

	// Two versions for one task (v1 superseded), one claimed escrow for
	// another.
	rows := []*secondary.EscrowStateRecord{
		{Fingerprint: "0xv1", TaskID: "TASK-001", Version: 1, AmountBase: 1_000_000, State: "escrowed"},
		{Fingerprint: "0xv2", TaskID: "TASK-001", Version: 2, AmountBase: 1_000_000, State: "authorization_required"},
		{Fingerprint: "0xother", TaskID: "TASK-002", Version: 1, AmountBase: 2_000_000, State: "claimed"},
	}
	for _, r := range rows {
		if err := repo.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert %s failed: %v", r.Fingerprint, err)
		}
	}

	byTask, err := repo.ListByTask(ctx, "TASK-001")
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(byTask) != 2 {
		t.Fatalf("ListByTask returned %d rows, want 2", len(byTask))
	}
	if byTask[0].Version != 2 {
		t.Errorf("newest version first, got version %d", byTask[0].Version)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("ListActive returned %d rows, want 2 (claimed excluded)", len(active))
	}
	for _, r := range active {
		if r.State == "claimed" {
			t.Errorf("claimed escrow %s should not be active", r.Fingerprint)
		}
	}
}
