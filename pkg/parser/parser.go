// Package parser extracts narrative text and a normalized event envelope
// from raw narrator model output. The model's wire contract is a fenced
// JSON block, but the parser tolerates unfenced JSON, malformed JSON
// (one repair attempt), and plain-prose roll requests. It never returns
// an error: the worst case is the raw text as narrative with no events.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jwebster45206/dm-engine/pkg/events"
)

// Parsed is the result of parsing one model response.
type Parsed struct {
	Narrative string
	Events    *events.GameEvents
}

// fencedBlock matches the first json-tagged triple-backtick block.
// The tag is required: the model fences quoted signs and verses in plain
// untagged blocks, and those must fall through to the other strategies.
// Non-greedy so a response with several blocks yields the first.
var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)[ \t]*\n?(.*?)```")

// Parse extracts narrative and events from a raw model response.
//
// Priority order: empty input, fenced JSON block (with one repair
// attempt), unfenced JSON object containing "requested_rolls", plain-text
// roll detection, pure narrative.
func Parse(raw string) Parsed {
	if strings.TrimSpace(raw) == "" {
		return Parsed{}
	}

	if m := fencedBlock.FindStringSubmatchIndex(raw); m != nil {
		narrative := strings.TrimSpace(raw[:m[0]])
		body := raw[m[2]:m[3]]

		obj, ok := parseObject(body)
		if !ok {
			obj, ok = parseObject(repairJSON(body))
		}
		if !ok {
			// Double failure is final for this response.
			return Parsed{Narrative: strings.TrimSpace(raw)}
		}
		return Parsed{Narrative: narrative, Events: events.Normalize(obj)}
	}

	if p, ok := parseUnfenced(raw); ok {
		return p
	}

	if rolls := DetectTextRollRequests(raw); len(rolls) > 0 {
		ev := events.Normalize(nil)
		ev.RequestedRolls = rolls
		ev.TextRollDetected = true
		return Parsed{Narrative: strings.TrimSpace(raw), Events: ev}
	}

	return Parsed{Narrative: strings.TrimSpace(raw)}
}

// parseUnfenced looks for a bare JSON object containing the literal key
// "requested_rolls", sliced from the nearest opening brace before the key
// to the final closing brace in the text.
func parseUnfenced(raw string) (Parsed, bool) {
	keyIdx := strings.Index(raw, `"requested_rolls"`)
	if keyIdx < 0 {
		return Parsed{}, false
	}
	start := strings.LastIndex(raw[:keyIdx], "{")
	if start < 0 {
		return Parsed{}, false
	}
	end := strings.LastIndex(raw, "}")
	if end <= start {
		return Parsed{}, false
	}

	obj, ok := parseObject(raw[start : end+1])
	if !ok {
		return Parsed{}, false
	}
	return Parsed{
		Narrative: strings.TrimSpace(raw[:start]),
		Events:    events.Normalize(obj),
	}, true
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
