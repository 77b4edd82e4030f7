// Package actor holds the player character sheet and combat enemy types.
// The sheet wraps a d20.Actor, which owns HP, AC and attribute state at
// runtime; the serializable spec is the storage representation.
package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/jwebster45206/d20"
)

// Stats5e represents the six core D&D 5e ability scores
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// SheetSpec is the serializable specification for a player character.
type SheetSpec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Class       string   `json:"class,omitempty"`
	Level       int      `json:"level,omitempty"`
	Race        string   `json:"race,omitempty"`
	Description string   `json:"description,omitempty"`
	Stats       Stats5e  `json:"stats,omitempty"`
	HP          int      `json:"hp,omitempty"`
	MaxHP       int      `json:"max_hp,omitempty"`
	AC          int      `json:"ac,omitempty"`
	// Proficiencies lists the skill names the character is proficient in,
	// lowercase, matching the rules package skill table.
	Proficiencies   []string       `json:"proficiencies,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Inventory       []string       `json:"inventory,omitempty"`
}

// CharacterSheet is the runtime representation of a player character.
type CharacterSheet struct {
	Spec  *SheetSpec
	Actor *d20.Actor // Built at runtime from SheetSpec
}

// NewCharacterSheet creates a CharacterSheet from a spec and builds its
// d20.Actor. This is the only supported construction path.
func NewCharacterSheet(spec *SheetSpec) (*CharacterSheet, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	actor, err := buildActor(spec)
	if err != nil {
		return nil, err
	}

	return &CharacterSheet{Spec: spec, Actor: actor}, nil
}

func buildActor(spec *SheetSpec) (*d20.Actor, error) {
	allAttrs := spec.Stats.ToAttributes()

	// Proficient skills are stored as attributes with value 1 so the
	// actor carries them alongside the core stats.
	profAttrs := make(map[string]int, len(spec.Proficiencies))
	for _, skill := range spec.Proficiencies {
		profAttrs[proficiencyKey(skill)] = 1
	}
	maps.Copy(allAttrs, profAttrs)

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}

func proficiencyKey(skill string) string {
	return "proficient:" + strings.ToLower(strings.TrimSpace(skill))
}

// Stat returns the named ability score from the live actor state.
func (c *CharacterSheet) Stat(name string) int {
	if c == nil || c.Actor == nil {
		return 0
	}
	if v, ok := c.Actor.Attribute(strings.ToLower(name)); ok {
		return v
	}
	return 0
}

// IsProficient reports whether the character is proficient in the skill.
func (c *CharacterSheet) IsProficient(skill string) bool {
	if c == nil || c.Actor == nil {
		return false
	}
	v, ok := c.Actor.Attribute(proficiencyKey(skill))
	return ok && v > 0
}

// AC returns the character's current armor class. This is the system's
// authority on player defenses; model-suggested values never override it.
func (c *CharacterSheet) AC() int {
	if c == nil || c.Actor == nil {
		return 0
	}
	return c.Actor.AC()
}

// HP returns current hit points.
func (c *CharacterSheet) HP() int {
	if c == nil || c.Actor == nil {
		return 0
	}
	return c.Actor.HP()
}

// MaxHP returns maximum hit points.
func (c *CharacterSheet) MaxHP() int {
	if c == nil || c.Actor == nil {
		return 0
	}
	return c.Actor.MaxHP()
}

// TakeDamage reduces current HP by n, clamped at zero.
func (c *CharacterSheet) TakeDamage(n int) {
	if c == nil || c.Actor == nil || n <= 0 {
		return
	}
	hp := c.Actor.HP() - n
	if hp < 0 {
		hp = 0
	}
	_ = c.Actor.SetHP(hp)
}

// Heal raises current HP by n, clamped at MaxHP.
func (c *CharacterSheet) Heal(n int) {
	if c == nil || c.Actor == nil || n <= 0 {
		return
	}
	hp := c.Actor.HP() + n
	if hp > c.Actor.MaxHP() {
		hp = c.Actor.MaxHP()
	}
	_ = c.Actor.SetHP(hp)
}

// MarshalJSON serializes the sheet in SheetSpec form, reading current HP
// from the live actor.
func (c *CharacterSheet) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	if c.Actor == nil {
		return json.Marshal(c.Spec)
	}

	out := *c.Spec
	out.HP = c.Actor.HP()
	out.MaxHP = c.Actor.MaxHP()
	out.AC = c.Actor.AC()
	return json.Marshal(&out)
}

// UnmarshalJSON reconstructs the sheet from SheetSpec form and rebuilds
// the actor.
func (c *CharacterSheet) UnmarshalJSON(data []byte) error {
	var spec SheetSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal character sheet: %w", err)
	}

	actor, err := buildActor(&spec)
	if err != nil {
		return fmt.Errorf("failed to rebuild actor: %w", err)
	}

	c.Spec = &spec
	c.Actor = actor
	return nil
}
