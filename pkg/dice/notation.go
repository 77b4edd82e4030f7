package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Notation is a parsed dice expression such as "2d8+3".
type Notation struct {
	Count    int `json:"count"`
	Sides    int `json:"sides"`
	Modifier int `json:"modifier"`
}

// notationPattern matches the exact grammar <uint>d<uint>[+|-<uint>].
var notationPattern = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// ParseNotation parses a dice expression of the form "NdS", "NdS+M" or
// "NdS-M". Any other shape returns a descriptive error; callers are
// expected to catch it rather than surface it to the user.
func ParseNotation(s string) (Notation, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	m := notationPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Notation{}, fmt.Errorf("invalid dice notation %q: expected format like 2d6 or 1d8+3", s)
	}

	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Notation{}, fmt.Errorf("invalid dice count in %q", s)
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Notation{}, fmt.Errorf("invalid die size in %q", s)
	}

	modifier := 0
	if m[3] != "" {
		modifier, err = strconv.Atoi(m[3])
		if err != nil {
			return Notation{}, fmt.Errorf("invalid modifier in %q", s)
		}
	}

	return Notation{Count: count, Sides: sides, Modifier: modifier}, nil
}

// RollNotation parses a dice expression and rolls it.
func RollNotation(s, description string) (RollResult, error) {
	n, err := ParseNotation(s)
	if err != nil {
		return RollResult{}, err
	}
	return RollWithModifier(n.Count, n.Sides, n.Modifier, description), nil
}
