package parser

import (
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON makes one best-effort pass over a JSON body that failed to
// parse: trailing commas before a closing brace or bracket are removed,
// and unmatched opening braces and brackets are closed. Brace and bracket
// counts are tracked independently so a body missing a mix of closers
// still repairs. Characters inside string literals are ignored.
func repairJSON(s string) string {
	repaired := trailingComma.ReplaceAllString(s, "$1")

	openBraces := 0
	openBrackets := 0
	inString := false
	escaped := false
	for _, r := range repaired {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				openBraces++
			}
		case '}':
			if !inString {
				openBraces--
			}
		case '[':
			if !inString {
				openBrackets++
			}
		case ']':
			if !inString {
				openBrackets--
			}
		}
	}

	var suffix strings.Builder
	for i := 0; i < openBrackets; i++ {
		suffix.WriteByte(']')
	}
	for i := 0; i < openBraces; i++ {
		suffix.WriteByte('}')
	}
	return repaired + suffix.String()
}
