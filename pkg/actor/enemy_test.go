package actor

import "testing"

func TestNewEnemy_SlugID(t *testing.T) {
	tests := []struct {
		name    string
		ordinal int
		want    string
	}{
		{"Goblin Scout", 1, "goblin-scout-1"},
		{"Goblin Scout", 2, "goblin-scout-2"},
		{"Worg", 1, "worg-1"},
		{"Cult Fanatic (robed)", 1, "cult-fanatic-robed-1"},
	}

	for _, tt := range tests {
		e := NewEnemy(tt.name, tt.ordinal, 7, 13, 12)
		if e.ID != tt.want {
			t.Errorf("NewEnemy(%q, %d).ID = %q, want %q", tt.name, tt.ordinal, e.ID, tt.want)
		}
		if e.HP != 7 || e.MaxHP != 7 {
			t.Errorf("Expected HP seeded to 7/7, got %d/%d", e.HP, e.MaxHP)
		}
	}
}

func TestEnemy_HPClamping(t *testing.T) {
	e := NewEnemy("Worg", 1, 26, 13, 14)

	e.TakeDamage(30)
	if e.HP != 0 {
		t.Errorf("HP should clamp at 0, got %d", e.HP)
	}
	if !e.IsDefeated() {
		t.Error("Enemy at 0 HP should be defeated")
	}

	e.Heal(100)
	if e.HP != 26 {
		t.Errorf("HP should clamp at MaxHP 26, got %d", e.HP)
	}

	e.SetHP(-5)
	if e.HP != 0 {
		t.Errorf("SetHP should clamp negative to 0, got %d", e.HP)
	}
	e.SetHP(40)
	if e.HP != 26 {
		t.Errorf("SetHP should clamp to MaxHP, got %d", e.HP)
	}
}

func TestEnemy_AddCondition(t *testing.T) {
	e := NewEnemy("Worg", 1, 26, 13, 14)
	e.AddCondition("prone")
	e.AddCondition("Prone")
	if len(e.Conditions) != 1 {
		t.Errorf("Conditions should dedupe case-insensitively, got %v", e.Conditions)
	}
}
