// Package events defines the normalized event envelope extracted from a
// narrator model response, and the total normalization function that
// maps arbitrary JSON onto it.
package events

// Roll request types. These are the only values the resolver dispatches on;
// anything else is treated as a player skill roll.
const (
	RollSkillCheck  = "skill_check"
	RollSavingThrow = "saving_throw"
	RollAttack      = "attack_roll"
	RollNPCAttack   = "npc_attack"
	RollNPCSave     = "npc_save"
	RollDamage      = "damage_roll"
)

// DefaultDC is used when a roll request does not specify a difficulty class.
const DefaultDC = 15

// Rest types.
const (
	RestShort = "short"
	RestLong  = "long"
)

// World fact categories.
const (
	FactLore         = "lore"
	FactCharacter    = "character"
	FactLocation     = "location"
	FactEvent        = "event"
	FactRelationship = "relationship"
	FactGeneral      = "general"
)

// RollRequest is a single dice request originating from the model (or
// inferred from prose). The client, never the model, produces the outcome.
type RollRequest struct {
	Type        string `json:"type"`
	Skill       string `json:"skill,omitempty"`
	Ability     string `json:"ability,omitempty"`
	DC          int    `json:"dc"`
	Description string `json:"description,omitempty"`

	// Attacker and Modifier apply to NPC rolls. A nil Modifier means the
	// resolver picks a small random competence bonus.
	Attacker string `json:"attacker,omitempty"`
	Modifier *int   `json:"modifier,omitempty"`

	// Notation applies to damage rolls, e.g. "2d8+3".
	Notation string `json:"notation,omitempty"`

	Advantage    bool `json:"advantage,omitempty"`
	Disadvantage bool `json:"disadvantage,omitempty"`
}

// Item describes an item gained or lost. The model may send either a bare
// string or a structured object; normalization upgrades strings.
type Item struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Description string `json:"description,omitempty"`
}

// QuestUpdate is a quest delta. Status is "new" or "completed".
type QuestUpdate struct {
	ID          string `json:"id,omitempty"`
	Status      string `json:"status"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CombatEnemy describes one enemy at the moment combat begins.
type CombatEnemy struct {
	Name       string `json:"name"`
	HP         int    `json:"hp"`
	AC         int    `json:"ac"`
	Initiative int    `json:"initiative"`
}

// CombatStart is present only on the turn combat begins.
type CombatStart struct {
	Enemies          []CombatEnemy `json:"enemies"`
	PlayerInitiative int           `json:"player_initiative"`
}

// EnemyUpdate is a per-enemy delta during combat, keyed by enemy id.
type EnemyUpdate struct {
	ID         string `json:"id"`
	HP         *int   `json:"hp,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Defeated   bool   `json:"defeated,omitempty"`
}

// Companion describes a party member joining the roster.
type Companion struct {
	Name        string `json:"name"`
	Race        string `json:"race,omitempty"`
	Class       string `json:"class,omitempty"`
	Description string `json:"description,omitempty"`
	HP          int    `json:"hp,omitempty"`
	MaxHP       int    `json:"max_hp,omitempty"`
}

// CompanionUpdate is a partial update to an existing companion, keyed by name.
type CompanionUpdate struct {
	Name        string `json:"name"`
	HP          *int   `json:"hp,omitempty"`
	Description string `json:"description,omitempty"`
}

// WorldFact is an append-only canonical statement about the game world.
type WorldFact struct {
	Fact     string `json:"fact"`
	Category string `json:"category"`
}

// NPCUpdate is a partial NPC record keyed by name.
type NPCUpdate struct {
	Name        string `json:"name"`
	Disposition string `json:"disposition,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// PlayerDeath is a narrative marker, not a terminal state.
type PlayerDeath struct {
	Description string `json:"description,omitempty"`
}

// GameEvents is the normalized event envelope parsed from one model
// response. After Normalize every field holds a typed value; absence in
// the raw input becomes the zero default, never a missing key.
type GameEvents struct {
	RequestedRolls []RollRequest `json:"requested_rolls"`

	DamageDealt int `json:"damage_dealt"`
	DamageTaken int `json:"damage_taken"`
	Healing     int `json:"healing"`
	GoldFound   int `json:"gold_found"`
	GoldLost    int `json:"gold_lost"`
	SilverFound int `json:"silver_found"`
	SilverLost  int `json:"silver_lost"`
	CopperFound int `json:"copper_found"`
	CopperLost  int `json:"copper_lost"`
	ExpAwarded  int `json:"exp_awarded"`

	ItemsFound []Item `json:"items_found"`
	ItemsLost  []Item `json:"items_lost"`

	// RestTaken is "short", "long" or empty.
	RestTaken string `json:"rest_taken"`

	ConditionsGained  []string      `json:"conditions_gained"`
	ConditionsRemoved []string      `json:"conditions_removed"`
	QuestUpdates      []QuestUpdate `json:"quest_updates"`

	Location string `json:"location"`

	CombatStart  *CombatStart  `json:"combat_start,omitempty"`
	CombatEnd    bool          `json:"combat_end"`
	EnemyUpdates []EnemyUpdate `json:"enemy_updates"`

	AddCompanions    []Companion       `json:"add_companions"`
	UpdateCompanions []CompanionUpdate `json:"update_companions"`
	RemoveCompanions []string          `json:"remove_companions"`

	WorldFacts []WorldFact  `json:"world_facts"`
	NPCUpdates []NPCUpdate  `json:"npc_updates"`

	PlayerDeath *PlayerDeath `json:"player_death,omitempty"`

	// TextRollDetected marks that RequestedRolls were inferred from prose
	// rather than the JSON contract. Consumed by the UI layer.
	TextRollDetected bool `json:"-"`
}

// HasStateChanges reports whether applying the events would mutate game
// state (requested rolls alone do not; they become state only once rolled).
func (e *GameEvents) HasStateChanges() bool {
	if e == nil {
		return false
	}
	return e.DamageDealt > 0 || e.DamageTaken > 0 || e.Healing > 0 ||
		e.GoldFound > 0 || e.GoldLost > 0 ||
		e.SilverFound > 0 || e.SilverLost > 0 ||
		e.CopperFound > 0 || e.CopperLost > 0 ||
		e.ExpAwarded > 0 ||
		len(e.ItemsFound) > 0 || len(e.ItemsLost) > 0 ||
		e.RestTaken != "" ||
		len(e.ConditionsGained) > 0 || len(e.ConditionsRemoved) > 0 ||
		len(e.QuestUpdates) > 0 ||
		e.Location != "" ||
		e.CombatStart != nil || e.CombatEnd ||
		len(e.EnemyUpdates) > 0 ||
		len(e.AddCompanions) > 0 || len(e.UpdateCompanions) > 0 || len(e.RemoveCompanions) > 0 ||
		len(e.WorldFacts) > 0 || len(e.NPCUpdates) > 0 ||
		e.PlayerDeath != nil
}
