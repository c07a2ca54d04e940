package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	clierr "github.com/augmented-finance/augmented-cli/internal/errors"
	"github.com/augmented-finance/augmented-cli/internal/invoke"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := OpenStore(filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSaveGetList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entry := NewEntry("setCooldownForAll", "kovan", "0x0000000000000000000000000000000000000ac0", []string{"STAKE_ADMIN"}, []string{"3600", "600"})
	if entry.ID == "" {
		t.Fatal("expected generated id")
	}
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entry.Outcomes = append(entry.Outcomes, invoke.Outcome{
		Mode:     invoke.ModeRoles,
		Function: "setCooldownForAll",
		Steps:    []invoke.Step{{Name: "callWithRoles", Status: invoke.StepStatusConfirmed, GasUsed: 51000}},
	})
	entry.Finish(nil)
	if err := store.Save(ctx, entry); err != nil {
		t.Fatalf("Save update failed: %v", err)
	}

	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if len(got.Outcomes) != 1 || got.Outcomes[0].Steps[0].GasUsed != 51000 {
		t.Fatalf("unexpected outcomes: %+v", got.Outcomes)
	}

	failed := NewEntry("getPrice", "kovan", "0x0000000000000000000000000000000000000ac0", nil, []string{"DAI"})
	failed.Finish(errors.New("unknown token name: DAI"))
	if err := store.Save(ctx, failed); err != nil {
		t.Fatalf("Save failed entry: %v", err)
	}

	all, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two entries, got %d", len(all))
	}
	onlyFailed, err := store.List(ctx, string(StatusFailed), 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].Error != "unknown token name: DAI" {
		t.Fatalf("unexpected failed entries: %+v", onlyFailed)
	}
}

func TestStoreGetMissingEntry(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	if !clierr.HasCode(err, clierr.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Save(context.Background(), Entry{}); err == nil {
		t.Fatal("expected missing id error")
	}
}
