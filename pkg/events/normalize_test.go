package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalize_Defaults(t *testing.T) {
	e := Normalize(map[string]any{})

	assert.NotNil(t, e.RequestedRolls)
	assert.Empty(t, e.RequestedRolls)
	assert.Equal(t, 0, e.DamageDealt)
	assert.Equal(t, 0, e.DamageTaken)
	assert.Equal(t, 0, e.Healing)
	assert.Equal(t, 0, e.GoldFound)
	assert.Equal(t, 0, e.ExpAwarded)
	assert.Empty(t, e.ItemsFound)
	assert.Empty(t, e.ItemsLost)
	assert.Equal(t, "", e.RestTaken)
	assert.Empty(t, e.ConditionsGained)
	assert.Empty(t, e.QuestUpdates)
	assert.Equal(t, "", e.Location)
	assert.Nil(t, e.CombatStart)
	assert.False(t, e.CombatEnd)
	assert.Empty(t, e.WorldFacts)
	assert.Nil(t, e.PlayerDeath)
	assert.False(t, e.TextRollDetected)
	assert.False(t, e.HasStateChanges())
}

func TestNormalize_NilInput(t *testing.T) {
	e := Normalize(nil)
	require.NotNil(t, e)
	assert.NotNil(t, e.RequestedRolls)
}

func TestNormalize_WrongTypesDegradeToDefaults(t *testing.T) {
	raw := decode(t, `{
		"damage_dealt": "twelve",
		"healing": true,
		"gold_found": -50,
		"items_found": "a sword",
		"rest_taken": "nap",
		"conditions_gained": [1, 2, "poisoned"],
		"quest_updates": ["not an object"],
		"location": 42,
		"combat_end": "yes",
		"requested_rolls": {"type": "skill_check"}
	}`)

	e := Normalize(raw)
	assert.Equal(t, 0, e.DamageDealt, "string damage should default")
	assert.Equal(t, 0, e.Healing, "bool healing should default")
	assert.Equal(t, 0, e.GoldFound, "negative currency should clamp to zero")
	assert.Empty(t, e.ItemsFound, "non-array items should default")
	assert.Equal(t, "", e.RestTaken, "unknown rest type should default")
	assert.Equal(t, []string{"poisoned"}, e.ConditionsGained)
	assert.Empty(t, e.QuestUpdates)
	assert.Equal(t, "", e.Location)
	assert.False(t, e.CombatEnd)
	assert.Empty(t, e.RequestedRolls, "non-array rolls should default")
}

func TestNormalize_RollRequests(t *testing.T) {
	raw := decode(t, `{
		"requested_rolls": [
			{"type": "skill_check", "skill": "perception", "dc": 12, "description": "spot the trap"},
			{"type": "saving_throw", "ability": "dexterity"},
			{"type": "npc_attack", "attacker": "goblin", "modifier": 4, "advantage": true},
			{"type": "damage_roll", "notation": "2d8+3"},
			{"type": "mystery_roll", "skill": "stealth"}
		]
	}`)

	e := Normalize(raw)
	require.Len(t, e.RequestedRolls, 5)

	assert.Equal(t, RollSkillCheck, e.RequestedRolls[0].Type)
	assert.Equal(t, "perception", e.RequestedRolls[0].Skill)
	assert.Equal(t, 12, e.RequestedRolls[0].DC)

	assert.Equal(t, RollSavingThrow, e.RequestedRolls[1].Type)
	assert.Equal(t, DefaultDC, e.RequestedRolls[1].DC, "missing dc defaults to 15")

	assert.Equal(t, RollNPCAttack, e.RequestedRolls[2].Type)
	require.NotNil(t, e.RequestedRolls[2].Modifier)
	assert.Equal(t, 4, *e.RequestedRolls[2].Modifier)
	assert.True(t, e.RequestedRolls[2].Advantage)

	assert.Equal(t, "2d8+3", e.RequestedRolls[3].Notation)

	assert.Equal(t, RollSkillCheck, e.RequestedRolls[4].Type, "unknown type falls back to skill_check")
}

func TestNormalize_ItemUpgrade(t *testing.T) {
	raw := decode(t, `{
		"items_found": [
			"rusty key",
			{"name": "healing potion", "type": "consumable", "quantity": 3},
			{"quantity": 2},
			{"name": "torch", "quantity": 0}
		]
	}`)

	e := Normalize(raw)
	require.Len(t, e.ItemsFound, 3)
	assert.Equal(t, Item{Name: "rusty key", Quantity: 1}, e.ItemsFound[0])
	assert.Equal(t, "healing potion", e.ItemsFound[1].Name)
	assert.Equal(t, 3, e.ItemsFound[1].Quantity)
	assert.Equal(t, 1, e.ItemsFound[2].Quantity, "zero quantity bumps to 1")
}

func TestNormalize_WorldFactUpgrade(t *testing.T) {
	raw := decode(t, `{
		"world_facts": [
			"The mayor is secretly a vampire",
			{"fact": "The old mill burned down", "category": "event"},
			{"fact": "Elaria dislikes the party", "category": "RELATIONSHIP"},
			{"fact": "", "category": "lore"},
			{"category": "lore"},
			{"fact": "Something odd", "category": "made_up"}
		]
	}`)

	e := Normalize(raw)
	require.Len(t, e.WorldFacts, 4)
	assert.Equal(t, WorldFact{Fact: "The mayor is secretly a vampire", Category: FactGeneral}, e.WorldFacts[0])
	assert.Equal(t, FactEvent, e.WorldFacts[1].Category)
	assert.Equal(t, FactRelationship, e.WorldFacts[2].Category, "category is case-insensitive")
	assert.Equal(t, FactGeneral, e.WorldFacts[3].Category, "unknown category defaults to general")
}

func TestNormalize_CombatStart(t *testing.T) {
	raw := decode(t, `{
		"combat_start": {
			"enemies": [
				{"name": "Goblin Scout", "hp": 7, "ac": 13, "initiative": 14},
				{"name": "Goblin Boss", "hp": 21, "ac": 15, "initiative": 9}
			],
			"player_initiative": 17
		}
	}`)

	e := Normalize(raw)
	require.NotNil(t, e.CombatStart)
	assert.Equal(t, 17, e.CombatStart.PlayerInitiative)
	require.Len(t, e.CombatStart.Enemies, 2)
	assert.Equal(t, "Goblin Scout", e.CombatStart.Enemies[0].Name)
	assert.Equal(t, 13, e.CombatStart.Enemies[0].AC)
}

func TestNormalize_EnemyUpdates(t *testing.T) {
	raw := decode(t, `{
		"enemy_updates": [
			{"id": "goblin-1", "hp": 3},
			{"id": "goblin-2", "defeated": true}
		]
	}`)

	e := Normalize(raw)
	require.Len(t, e.EnemyUpdates, 2)
	require.NotNil(t, e.EnemyUpdates[0].HP)
	assert.Equal(t, 3, *e.EnemyUpdates[0].HP)
	assert.Nil(t, e.EnemyUpdates[1].HP, "absent hp stays nil, not zero")
	assert.True(t, e.EnemyUpdates[1].Defeated)
}

// Normalization is a projection: running it twice over the same source
// yields a deep-equal result.
func TestNormalize_Idempotent(t *testing.T) {
	raw := decode(t, `{
		"requested_rolls": [{"type": "skill_check", "skill": "stealth", "dc": 14}],
		"damage_taken": 6,
		"items_found": ["rope"],
		"world_facts": ["The door is trapped"],
		"rest_taken": "short",
		"player_death": {"description": "The darkness closes in."}
	}`)

	first := Normalize(raw)

	// Round-trip the normalized envelope through JSON and normalize again.
	data, err := json.Marshal(first)
	require.NoError(t, err)
	var rawAgain map[string]any
	require.NoError(t, json.Unmarshal(data, &rawAgain))
	second := Normalize(rawAgain)

	assert.Equal(t, first, second)
}
