package actor

import (
	"fmt"
	"strings"
)

// Enemy represents a hostile creature during combat. Enemies are created
// from the combat_start event and updated by enemy_updates deltas until
// combat ends.
type Enemy struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
	AC         int    `json:"ac"`
	Initiative int    `json:"initiative"`

	Conditions []string `json:"conditions,omitempty"`
}

// NewEnemy creates an Enemy with a slug id derived from its name and
// ordinal, e.g. "goblin-scout-1".
func NewEnemy(name string, ordinal, hp, ac, initiative int) *Enemy {
	return &Enemy{
		ID:         fmt.Sprintf("%s-%d", slug(name), ordinal),
		Name:       name,
		HP:         hp,
		MaxHP:      hp,
		AC:         ac,
		Initiative: initiative,
	}
}

// TakeDamage reduces the enemy's HP by the specified amount.
// HP cannot go below 0.
func (e *Enemy) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	e.HP -= n
	if e.HP < 0 {
		e.HP = 0
	}
}

// Heal increases the enemy's HP by the specified amount.
// HP cannot exceed MaxHP.
func (e *Enemy) Heal(n int) {
	if n <= 0 {
		return
	}
	e.HP += n
	if e.HP > e.MaxHP {
		e.HP = e.MaxHP
	}
}

// SetHP sets current HP directly, clamped to [0, MaxHP].
func (e *Enemy) SetHP(hp int) {
	if hp < 0 {
		hp = 0
	}
	if e.MaxHP > 0 && hp > e.MaxHP {
		hp = e.MaxHP
	}
	e.HP = hp
}

// IsDefeated returns true if the enemy's HP is 0 or less.
func (e *Enemy) IsDefeated() bool {
	return e.HP <= 0
}

// AddCondition appends a condition if not already present.
func (e *Enemy) AddCondition(cond string) {
	for _, c := range e.Conditions {
		if strings.EqualFold(c, cond) {
			return
		}
	}
	e.Conditions = append(e.Conditions, cond)
}

func slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
