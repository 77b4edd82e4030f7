// Package rules provides the 5e-style modifier math consumed by the roll
// resolver. All functions are pure lookups; game state never changes here.
package rules

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/actor"
)

// SkillAbility maps each skill to its governing ability score.
var SkillAbility = map[string]string{
	"athletics":       "strength",
	"acrobatics":      "dexterity",
	"sleight of hand": "dexterity",
	"stealth":         "dexterity",
	"arcana":          "intelligence",
	"history":         "intelligence",
	"investigation":   "intelligence",
	"nature":          "intelligence",
	"religion":        "intelligence",
	"animal handling": "wisdom",
	"insight":         "wisdom",
	"medicine":        "wisdom",
	"perception":      "wisdom",
	"survival":        "wisdom",
	"deception":       "charisma",
	"intimidation":    "charisma",
	"performance":     "charisma",
	"persuasion":      "charisma",
}

var abilities = map[string]bool{
	"strength":     true,
	"dexterity":    true,
	"constitution": true,
	"intelligence": true,
	"wisdom":       true,
	"charisma":     true,
}

// AbilityModifier converts an ability score to its modifier using floor
// division, so a score of 7 yields -2, not -1.
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ProficiencyBonus returns the proficiency bonus for a character level.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// SkillModifier resolves the total modifier for a skill or ability roll:
// the governing ability's modifier, plus proficiency bonus when the sheet
// is proficient. An unrecognized name returns an error; callers degrade
// to a flat d20.
func SkillModifier(sheet *actor.CharacterSheet, skill string) (int, error) {
	name := strings.ToLower(strings.TrimSpace(skill))
	if name == "" {
		return 0, fmt.Errorf("empty skill name")
	}

	if name == "attack" {
		return AttackModifier(sheet), nil
	}

	ability, ok := SkillAbility[name]
	if !ok {
		if !abilities[name] {
			return 0, fmt.Errorf("unknown skill %q", skill)
		}
		// Raw ability check or saving throw.
		ability = name
	}

	mod := AbilityModifier(sheet.Stat(ability))
	if sheet.IsProficient(name) {
		mod += ProficiencyBonus(sheet.Spec.Level)
	}
	return mod, nil
}

// AttackModifier is the modifier for a generic attack roll: the better of
// strength and dexterity, plus proficiency.
func AttackModifier(sheet *actor.CharacterSheet) int {
	str := AbilityModifier(sheet.Stat("strength"))
	dex := AbilityModifier(sheet.Stat("dexterity"))
	mod := str
	if dex > mod {
		mod = dex
	}
	return mod + ProficiencyBonus(sheet.Spec.Level)
}
