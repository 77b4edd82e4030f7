package prompts

import (
	"strconv"

	"github.com/jwebster45206/dm-engine/pkg/events"
	"github.com/jwebster45206/dm-engine/pkg/state"
)

// PromptState is a reduced game state for LLM prompts. It carries what
// the narrator needs to stay consistent and omits bookkeeping the model
// should never see (roll log, hidden transcript, statistics).
type PromptState struct {
	Character  *PromptCharacter   `json:"character,omitempty"`
	Location   string             `json:"location,omitempty"`
	Gold       int                `json:"gold,omitempty"`
	Silver     int                `json:"silver,omitempty"`
	Copper     int                `json:"copper,omitempty"`
	Inventory  []string           `json:"inventory,omitempty"`
	Conditions []string           `json:"conditions,omitempty"`
	Quests     []PromptQuest      `json:"active_quests,omitempty"`
	Companions []state.Companion  `json:"companions,omitempty"`
	InCombat   bool               `json:"in_combat,omitempty"`
	Enemies    []PromptEnemy      `json:"enemies,omitempty"`
	WorldFacts []events.WorldFact `json:"world_facts,omitempty"`
	NPCs       map[string]state.NPC `json:"npcs,omitempty"`
	IsEnded    bool               `json:"is_ended,omitempty"`
}

// PromptCharacter summarizes the player character. AC is intentionally
// included so the narrator can describe near misses plausibly; it still
// has no authority over resolution.
type PromptCharacter struct {
	Name  string `json:"name,omitempty"`
	Class string `json:"class,omitempty"`
	Level int    `json:"level,omitempty"`
	Race  string `json:"race,omitempty"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
	AC    int    `json:"ac"`
}

type PromptQuest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PromptEnemy struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HP         int      `json:"hp"`
	Conditions []string `json:"conditions,omitempty"`
	Defeated   bool     `json:"defeated,omitempty"`
}

// ToPromptState projects the full game state down to the prompt view.
func ToPromptState(gs *state.GameState) *PromptState {
	ps := &PromptState{
		Location:   gs.Location,
		Gold:       gs.Gold,
		Silver:     gs.Silver,
		Copper:     gs.Copper,
		Conditions: gs.Conditions,
		Companions: gs.Companions,
		InCombat:   gs.InCombat,
		WorldFacts: gs.WorldFacts,
		NPCs:       gs.NPCs,
		IsEnded:    gs.IsEnded,
	}

	if gs.Sheet != nil && gs.Sheet.Spec != nil {
		ps.Character = &PromptCharacter{
			Name:  gs.Sheet.Spec.Name,
			Class: gs.Sheet.Spec.Class,
			Level: gs.Sheet.Spec.Level,
			Race:  gs.Sheet.Spec.Race,
			HP:    gs.Sheet.HP(),
			MaxHP: gs.Sheet.MaxHP(),
			AC:    gs.Sheet.AC(),
		}
	}

	for _, item := range gs.Inventory {
		name := item.Name
		if item.Quantity > 1 {
			name = fmtItem(item.Name, item.Quantity)
		}
		ps.Inventory = append(ps.Inventory, name)
	}

	// Only open quests go to the narrator.
	for _, q := range gs.Quests {
		if q.Completed {
			continue
		}
		ps.Quests = append(ps.Quests, PromptQuest{Name: q.Name, Description: q.Description})
	}

	for _, e := range gs.Enemies {
		ps.Enemies = append(ps.Enemies, PromptEnemy{
			ID:         e.ID,
			Name:       e.Name,
			HP:         e.HP,
			Conditions: e.Conditions,
			Defeated:   e.IsDefeated(),
		})
	}

	return ps
}

func fmtItem(name string, qty int) string {
	return name + " x" + strconv.Itoa(qty)
}
