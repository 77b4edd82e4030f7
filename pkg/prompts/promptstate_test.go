package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jwebster45206/dm-engine/pkg/events"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

func TestToPromptState(t *testing.T) {
	gs := testState(t)
	gs.Location = "old mill"
	gs.Gold = 7
	gs.Inventory = []events.Item{
		{Name: "dagger", Quantity: 1},
		{Name: "torch", Quantity: 3},
	}
	gs.Quests = []state.Quest{
		{ID: "find_the_heir", Name: "Find the Heir"},
		{ID: "done_quest", Name: "Done Quest", Completed: true},
	}

	ps := ToPromptState(gs)

	if ps.Character == nil {
		t.Fatal("expected character summary")
	}
	if ps.Character.Name != "Wren" || ps.Character.AC != 15 {
		t.Errorf("unexpected character summary: %+v", ps.Character)
	}
	if ps.Location != "old mill" || ps.Gold != 7 {
		t.Error("scalar state not projected")
	}
	if len(ps.Inventory) != 2 || ps.Inventory[1] != "torch x3" {
		t.Errorf("unexpected inventory projection: %v", ps.Inventory)
	}
	if len(ps.Quests) != 1 || ps.Quests[0].Name != "Find the Heir" {
		t.Errorf("completed quests should be omitted: %v", ps.Quests)
	}
}

func TestToPromptState_ExcludesBookkeeping(t *testing.T) {
	gs := testState(t)
	gs.AddRoll(state.RollRecord{Type: "skill_check", Total: 18})
	gs.Stats.DamageTaken = 12

	data, err := json.Marshal(ToPromptState(gs))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "roll_log") || strings.Contains(out, "damage_taken") || strings.Contains(out, "chat_history") {
		t.Errorf("prompt state leaked bookkeeping fields: %s", out)
	}
}

func TestToPromptState_Combat(t *testing.T) {
	gs := testState(t)
	ev := &events.GameEvents{
		CombatStart: &events.CombatStart{
			PlayerInitiative: 15,
			Enemies: []events.CombatEnemy{
				{Name: "Bandit", HP: 11, AC: 12, Initiative: 10},
			},
		},
	}
	if err := state.NewEventWorker(gs, ev, nil).Apply(); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	ps := ToPromptState(gs)
	if !ps.InCombat {
		t.Error("combat flag not projected")
	}
	if len(ps.Enemies) != 1 || ps.Enemies[0].ID != "bandit-1" {
		t.Errorf("unexpected enemy projection: %+v", ps.Enemies)
	}
}

func TestGetStatePrompt(t *testing.T) {
	msg, err := GetStatePrompt(testState(t))
	if err != nil {
		t.Fatalf("GetStatePrompt failed: %v", err)
	}
	if !strings.Contains(msg.Content, "```json") {
		t.Error("state prompt should embed fenced JSON")
	}

	if _, err := GetStatePrompt(nil); err == nil {
		t.Error("nil game state should error")
	}
}
