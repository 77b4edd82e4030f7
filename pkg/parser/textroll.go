package parser

import (
	"regexp"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/events"
)

// skillVocabulary is the fixed list of skill, ability and action names the
// text roll detector recognizes. Order matters: the fallback scan walks
// this list front to back and stops on the first hit.
var skillVocabulary = []string{
	"strength",
	"dexterity",
	"constitution",
	"intelligence",
	"wisdom",
	"charisma",
	"athletics",
	"acrobatics",
	"sleight of hand",
	"stealth",
	"arcana",
	"history",
	"investigation",
	"nature",
	"religion",
	"animal handling",
	"insight",
	"medicine",
	"perception",
	"survival",
	"deception",
	"intimidation",
	"performance",
	"persuasion",
	"initiative",
	"attack",
}

var (
	// dcPattern extracts a difficulty class from "DC 15", "DC15" or
	// "difficulty class 15". First match wins.
	dcPattern = regexp.MustCompile(`(?i)\b(?:DC\s*|difficulty class\s+)(\d{1,2})\b`)

	// rollPhrase is the primary pattern: "roll/make/attempt a(n) <skill
	// phrase> check/save/saving throw". Matched globally; a single
	// response may ask for several rolls in prose.
	rollPhrase = regexp.MustCompile(`(?i)\b(?:roll|make|attempt)s?\s+(?:a|an)\s+([a-z][a-z ]{1,40}?)\s*(check|saving throw|save)\b`)
)

// DetectTextRollRequests is a heuristic safety net for when the model
// writes a roll request in prose instead of the JSON contract. False
// negatives fall through to pure narrative; false positives merely cause
// a harmless extra dice roll.
func DetectTextRollRequests(text string) []events.RollRequest {
	dc := events.DefaultDC
	if m := dcPattern.FindStringSubmatch(text); m != nil {
		if n := atoiSafe(m[1]); n > 0 {
			dc = n
		}
	}

	var rolls []events.RollRequest
	for _, m := range rollPhrase.FindAllStringSubmatch(text, -1) {
		phrase := strings.TrimSpace(m[1])
		kind := strings.ToLower(m[2])

		skill, ok := matchSkill(phrase)
		if !ok {
			continue
		}

		rollType := events.RollSkillCheck
		if strings.Contains(kind, "save") {
			rollType = events.RollSavingThrow
		}
		rolls = append(rolls, events.RollRequest{
			Type:        rollType,
			Skill:       skill,
			DC:          dc,
			Description: strings.TrimSpace(m[0]),
		})
	}
	if len(rolls) > 0 {
		return rolls
	}

	// Fallback: look for "<skill> check|save" anywhere in the text. One
	// detected roll is enough to trigger the downstream flow, so this
	// scan stops at the first hit.
	lower := strings.ToLower(text)
	for _, skill := range skillVocabulary {
		for _, suffix := range []string{" check", " saving throw", " save"} {
			if !strings.Contains(lower, skill+suffix) {
				continue
			}
			rollType := events.RollSkillCheck
			if strings.Contains(suffix, "save") {
				rollType = events.RollSavingThrow
			}
			return []events.RollRequest{{
				Type:        rollType,
				Skill:       skill,
				DC:          dc,
				Description: skill + suffix,
			}}
		}
	}

	return nil
}

// matchSkill fuzzily normalizes a prose skill phrase against the fixed
// vocabulary using case-insensitive substring containment in either
// direction ("Wisdom saving" matches "wisdom"; "sleight" matches
// "sleight of hand").
func matchSkill(phrase string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return "", false
	}
	for _, skill := range skillVocabulary {
		if strings.Contains(p, skill) || strings.Contains(skill, p) {
			return skill, true
		}
	}
	return "", false
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
