package parser

import "regexp"

// outcomePhrases are result-asserting phrases that should never appear in
// narration before the corresponding dice have been rolled. The list is
// deliberately small and literal; the guard is a safety net, not language
// understanding.
var outcomePhrases = []string{
	"you succeed",
	"you succeeded",
	"you successfully",
	"you fail",
	"you failed",
	"critical hit",
	"critical success",
	"critical failure",
	"you hit",
	"you miss",
	"the attack hits",
	"the attack misses",
	"you spot",
	"you notice",
	"you manage to",
	"you narrowly avoid",
	"you dodge",
	"you resist",
}

var outcomeRegexes = buildOutcomeRegexes()

func buildOutcomeRegexes() []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, 0, len(outcomePhrases))
	for _, phrase := range outcomePhrases {
		regexes = append(regexes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	return regexes
}

// DetectPreNarratedOutcome reports whether the narrative asserts an
// outcome that depends on dice not yet rolled. It is a pure predicate;
// the conversation loop uses it to inject a correction instruction into
// the next model turn.
func DetectPreNarratedOutcome(text string) bool {
	for _, re := range outcomeRegexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
