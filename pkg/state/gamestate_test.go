package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jwebster45206/dm-engine/pkg/actor"
	"github.com/jwebster45206/dm-engine/pkg/chat"
)

func testSheet(t *testing.T) *actor.CharacterSheet {
	t.Helper()
	sheet, err := actor.NewCharacterSheet(&actor.SheetSpec{
		ID:    "pc-test",
		Name:  "Wren",
		Class: "rogue",
		Level: 3,
		Stats: actor.Stats5e{
			Strength:     10,
			Dexterity:    16,
			Constitution: 12,
			Intelligence: 13,
			Wisdom:       12,
			Charisma:     8,
		},
		HP:            24,
		MaxHP:         24,
		AC:            15,
		Proficiencies: []string{"stealth", "athletics"},
		Inventory:     []string{"dagger", "rope"},
	})
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}
	return sheet
}

func TestNewGameState(t *testing.T) {
	gs := NewGameState(testSheet(t))

	if gs.ID.String() == "" {
		t.Error("expected a session id")
	}
	if gs.Sheet == nil {
		t.Fatal("expected a character sheet")
	}
	if len(gs.Inventory) != 2 {
		t.Errorf("expected starting inventory seeded from sheet, got %d items", len(gs.Inventory))
	}
	if gs.Inventory[0].Name != "dagger" || gs.Inventory[0].Quantity != 1 {
		t.Errorf("unexpected first item: %+v", gs.Inventory[0])
	}
	if gs.InCombat {
		t.Error("new session should not be in combat")
	}
}

func TestGameState_AddMessage(t *testing.T) {
	gs := NewGameState(testSheet(t))
	gs.AddMessage(chat.ChatRoleUser, "I open the door.", false)
	gs.AddMessage(chat.ChatRoleSystem, "roll outcome", true)

	if len(gs.ChatHistory) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gs.ChatHistory))
	}
	if gs.ChatHistory[1].Hidden != true {
		t.Error("second message should be hidden")
	}
}

func TestGameState_AddRoll(t *testing.T) {
	gs := NewGameState(testSheet(t))
	gs.AddRoll(RollRecord{
		Type:        "skill_check",
		Description: "Stealth Check",
		Rolls:       []int{14},
		Modifier:    5,
		Total:       19,
		DC:          15,
		Success:     true,
	})

	if len(gs.RollLog) != 1 {
		t.Fatalf("expected 1 roll record, got %d", len(gs.RollLog))
	}
	if gs.RollLog[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled in when absent")
	}

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gs.AddRoll(RollRecord{Type: "damage_roll", Timestamp: ts})
	if !gs.RollLog[1].Timestamp.Equal(ts) {
		t.Error("explicit timestamp should be preserved")
	}
}

func TestGameState_ArmorClass(t *testing.T) {
	gs := NewGameState(testSheet(t))
	if got := gs.ArmorClass(); got != 15 {
		t.Errorf("expected AC 15, got %d", got)
	}

	bare := &GameState{}
	if got := bare.ArmorClass(); got != 10 {
		t.Errorf("expected default AC 10 without a sheet, got %d", got)
	}
}

func TestGameState_HistoryForPrompt(t *testing.T) {
	gs := NewGameState(testSheet(t))
	for i := 0; i < PromptHistoryLimit+5; i++ {
		gs.AddMessage(chat.ChatRoleUser, "msg", false)
	}
	if got := len(gs.HistoryForPrompt()); got != PromptHistoryLimit {
		t.Errorf("expected window of %d, got %d", PromptHistoryLimit, got)
	}
}

func TestGameState_JSONRoundTrip(t *testing.T) {
	gs := NewGameState(testSheet(t))
	gs.Location = "The Rusty Flagon"
	gs.Gold = 12
	gs.Sheet.TakeDamage(6)
	gs.NPCs["barkeep"] = NPC{Name: "Barkeep", Disposition: "friendly"}

	data, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored.ID != gs.ID {
		t.Error("session id did not survive round trip")
	}
	if restored.Sheet == nil || restored.Sheet.HP() != 18 {
		t.Errorf("expected current HP 18 after round trip, got %d", restored.Sheet.HP())
	}
	if restored.NPCs["barkeep"].Disposition != "friendly" {
		t.Error("NPC record did not survive round trip")
	}
}

func TestGameState_DeepCopy(t *testing.T) {
	gs := NewGameState(testSheet(t))
	gs.Gold = 5

	cp, err := gs.DeepCopy()
	if err != nil {
		t.Fatalf("deep copy failed: %v", err)
	}

	cp.Gold = 99
	cp.Sheet.TakeDamage(10)
	if gs.Gold != 5 {
		t.Error("copy mutation leaked into original gold")
	}
	if gs.Sheet.HP() != 24 {
		t.Error("copy mutation leaked into original sheet")
	}
}
