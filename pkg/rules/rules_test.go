package rules

import (
	"testing"

	"github.com/jwebster45206/dm-engine/pkg/actor"
)

func testSheet(t *testing.T) *actor.CharacterSheet {
	t.Helper()
	sheet, err := actor.NewCharacterSheet(&actor.SheetSpec{
		ID:    "rogue",
		Name:  "Vex",
		Class: "Rogue",
		Level: 5,
		Stats: actor.Stats5e{
			Strength:     8,
			Dexterity:    16,
			Constitution: 12,
			Intelligence: 14,
			Wisdom:       13,
			Charisma:     10,
		},
		HP:            32,
		MaxHP:         32,
		AC:            14,
		Proficiencies: []string{"stealth", "perception"},
	})
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}
	return sheet
}

func TestAbilityModifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{1, -5},
		{7, -2},
		{8, -1},
		{9, -1},
		{10, 0},
		{11, 0},
		{12, 1},
		{15, 2},
		{16, 3},
		{20, 5},
		{30, 10},
	}

	for _, tt := range tests {
		if got := AbilityModifier(tt.score); got != tt.want {
			t.Errorf("AbilityModifier(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestProficiencyBonus(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 2},
		{1, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{13, 5},
		{17, 6},
		{20, 6},
	}

	for _, tt := range tests {
		if got := ProficiencyBonus(tt.level); got != tt.want {
			t.Errorf("ProficiencyBonus(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestSkillModifier(t *testing.T) {
	sheet := testSheet(t)

	tests := []struct {
		skill   string
		want    int
		wantErr bool
	}{
		// dex 16 (+3) with proficiency (+3 at level 5)
		{"stealth", 6, false},
		// wis 13 (+1) with proficiency
		{"perception", 4, false},
		// cha 10 (+0), not proficient
		{"persuasion", 0, false},
		// str 8 (-1), not proficient
		{"athletics", -1, false},
		// raw ability check
		{"dexterity", 3, false},
		// case and whitespace tolerated
		{"  Stealth ", 6, false},
		// attack = max(str,dex) + proficiency
		{"attack", 6, false},
		{"basket weaving", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			got, err := SkillModifier(sheet, tt.skill)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SkillModifier(%q) expected error", tt.skill)
				}
				return
			}
			if err != nil {
				t.Fatalf("SkillModifier(%q) unexpected error: %v", tt.skill, err)
			}
			if got != tt.want {
				t.Errorf("SkillModifier(%q) = %d, want %d", tt.skill, got, tt.want)
			}
		})
	}
}

func TestAttackModifier(t *testing.T) {
	sheet := testSheet(t)
	// dex (+3) beats str (-1); proficiency at level 5 is +3
	if got := AttackModifier(sheet); got != 6 {
		t.Errorf("AttackModifier = %d, want 6", got)
	}
}
