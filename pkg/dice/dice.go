// Package dice implements cryptographically random die rolling and
// dice-notation parsing. Rolls use crypto/rand so that neither the
// player nor the narrating model can predict or influence outcomes.
package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source produces individual die rolls. The resolver and tests can
// substitute a scripted source; production code uses CryptoSource.
type Source interface {
	// Die returns a uniform random integer in [1, sides].
	Die(sides int) int
}

// CryptoSource rolls dice using crypto/rand.
type CryptoSource struct{}

// Die returns a uniform random integer in [1, sides].
// rand.Int is rejection-sampled internally, so there is no modulo bias.
func (CryptoSource) Die(sides int) int {
	if sides < 1 {
		return 1
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		// crypto/rand failure means the OS entropy source is broken;
		// there is no meaningful fallback for a fairness-critical roll.
		panic(fmt.Sprintf("dice: crypto random source failed: %v", err))
	}
	return int(n.Int64()) + 1
}

var defaultSource Source = CryptoSource{}

// RollDie rolls a single die with the given number of sides.
func RollDie(sides int) int {
	return defaultSource.Die(sides)
}

// RollDice rolls count dice with the given number of sides and
// returns the individual face values in roll order.
func RollDice(count, sides int) []int {
	if count < 1 {
		return nil
	}
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = RollDie(sides)
	}
	return rolls
}

// RollResult is the outcome of rolling one or more dice.
type RollResult struct {
	Description string `json:"description,omitempty"`
	Rolls       []int  `json:"rolls"`
	Modifier    int    `json:"modifier"`
	Total       int    `json:"total"`

	// IsCritical and IsCritFail are only meaningful for a single d20.
	IsCritical bool `json:"is_critical,omitempty"`
	IsCritFail bool `json:"is_crit_fail,omitempty"`
}

// RollWithModifier rolls count dice with the given sides, adds the
// modifier, and flags natural 20 / natural 1 when the roll is exactly
// one d20.
func RollWithModifier(count, sides, modifier int, description string) RollResult {
	return rollWithSource(defaultSource, count, sides, modifier, description)
}

func rollWithSource(src Source, count, sides, modifier int, description string) RollResult {
	if count < 1 {
		count = 1
	}
	rolls := make([]int, count)
	subtotal := 0
	for i := range rolls {
		rolls[i] = src.Die(sides)
		subtotal += rolls[i]
	}
	r := RollResult{
		Description: description,
		Rolls:       rolls,
		Modifier:    modifier,
		Total:       subtotal + modifier,
	}
	if count == 1 && sides == 20 {
		r.IsCritical = rolls[0] == 20
		r.IsCritFail = rolls[0] == 1
	}
	return r
}
