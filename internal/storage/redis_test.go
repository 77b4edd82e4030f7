package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func testGameState(t *testing.T) *state.GameState {
	t.Helper()
	sheet, err := actor.NewCharacterSheet(&actor.SheetSpec{
		ID:    "pc-test",
		Name:  "Wren",
		Level: 3,
		Stats: actor.Stats5e{Strength: 10, Dexterity: 16, Constitution: 12, Intelligence: 13, Wisdom: 12, Charisma: 8},
		HP:    24, MaxHP: 24, AC: 15,
	})
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}
	return state.NewGameState(sheet)
}

func TestRedisStorage_SaveAndLoadGameState(t *testing.T) {
	store, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := testGameState(t)
	gs.Location = "tavern"
	gs.Gold = 12
	gs.Sheet.TakeDamage(6)

	if err := store.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	loaded, err := store.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load gamestate: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil gamestate")
	}
	if loaded.ID != gs.ID {
		t.Errorf("Expected ID %v, got %v", gs.ID, loaded.ID)
	}
	if loaded.Location != "tavern" || loaded.Gold != 12 {
		t.Errorf("State fields did not round trip: %+v", loaded)
	}
	if loaded.Sheet == nil || loaded.Sheet.HP() != 18 {
		t.Errorf("Expected rebuilt sheet with HP 18, got %v", loaded.Sheet.HP())
	}
}

func TestRedisStorage_LoadMissingGameState(t *testing.T) {
	store, _ := setupTestStorage(t)

	loaded, err := store.LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Missing gamestate should not error: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing gamestate")
	}
}

func TestRedisStorage_DeleteGameState(t *testing.T) {
	store, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := testGameState(t)
	if err := store.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}
	if err := store.AppendRoll(ctx, gs.ID, state.RollRecord{Type: "skill_check", Total: 17}); err != nil {
		t.Fatalf("Failed to append roll: %v", err)
	}

	if err := store.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("Failed to delete gamestate: %v", err)
	}

	loaded, err := store.LoadGameState(ctx, gs.ID)
	if err != nil || loaded != nil {
		t.Error("Gamestate should be gone after delete")
	}
	rolls, err := store.ListRolls(ctx, gs.ID)
	if err != nil {
		t.Fatalf("ListRolls failed: %v", err)
	}
	if len(rolls) != 0 {
		t.Error("Roll trail should be deleted with the session")
	}
}

func TestRedisStorage_RollTrail(t *testing.T) {
	store, _ := setupTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	records := []state.RollRecord{
		{Type: "skill_check", Description: "Stealth Check", Rolls: []int{14}, Modifier: 5, Total: 19, DC: 13, Success: true},
		{Type: "damage_roll", Description: "Shortsword damage", Rolls: []int{4, 2}, Modifier: 3, Total: 9, IsDamage: true},
	}
	for _, rec := range records {
		if err := store.AppendRoll(ctx, id, rec); err != nil {
			t.Fatalf("Failed to append roll: %v", err)
		}
	}

	got, err := store.ListRolls(ctx, id)
	if err != nil {
		t.Fatalf("ListRolls failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].Description != "Stealth Check" || got[1].Total != 9 {
		t.Errorf("Records out of order or corrupted: %+v", got)
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	store, mr := setupTestStorage(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping should succeed: %v", err)
	}

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Ping should fail after server shutdown")
	}
}

func TestRedisStorage_SheetSpecs(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	// Empty data dir lists no sheets.
	ids, err := store.ListSheets(ctx)
	if err != nil {
		t.Fatalf("ListSheets failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no sheets, got %v", ids)
	}

	if _, err := store.GetSheetSpec(ctx, "nobody"); err == nil {
		t.Error("Missing sheet should error")
	}

	sheetsDir := filepath.Join(dataDir, "sheets")
	if err := os.MkdirAll(sheetsDir, 0o755); err != nil {
		t.Fatalf("Failed to create sheets dir: %v", err)
	}
	raw := `{"id":"ignored","name":"Wren","class":"rogue","level":3,"hp":24,"max_hp":24,"ac":15}`
	if err := os.WriteFile(filepath.Join(sheetsDir, "wren.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("Failed to write sheet file: %v", err)
	}

	ids, err = store.ListSheets(ctx)
	if err != nil {
		t.Fatalf("ListSheets failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "wren" {
		t.Errorf("Expected [wren], got %v", ids)
	}

	spec, err := store.GetSheetSpec(ctx, "wren")
	if err != nil {
		t.Fatalf("GetSheetSpec failed: %v", err)
	}
	if spec.ID != "wren" {
		t.Errorf("Filename should override spec id, got %q", spec.ID)
	}
	if spec.Name != "Wren" || spec.AC != 15 {
		t.Errorf("Unexpected spec: %+v", spec)
	}
}

func TestMockStorage_RoundTrip(t *testing.T) {
	mock := NewMockStorage()
	ctx := context.Background()

	gs := testGameState(t)
	if err := mock.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	loaded, err := mock.LoadGameState(ctx, gs.ID)
	if err != nil || loaded == nil {
		t.Fatal("Expected saved gamestate back")
	}

	if err := mock.SaveGameState(ctx, gs.ID, nil); err == nil {
		t.Error("nil gamestate should be rejected")
	}
}
