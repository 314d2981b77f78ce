package readiness

import "strings"

// bullet markers recognized at the start of a definition line.
var bulletMarkers = []string{"- ", "* ", "• ", "– "}

// ParseDefinition splits a free-text ready-state definition into an ordered
// list of clauses. Bulleted lines are clauses; section headers (lines ending
// in a colon), prose introductions and blank lines are skipped. A definition
// with no bullets at all treats every non-empty line as a clause, so short
// comma-free definitions still work.
func ParseDefinition(text string) []Clause {
	lines := strings.Split(text, "\n")

	var bulleted []Clause
	var plain []Clause
	sawBullet := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if marker := bulletPrefix(line); marker != "" {
			body := strings.TrimSpace(strings.TrimPrefix(line, marker))
			if c, ok := newClause(body); ok {
				bulleted = append(bulleted, c)
			}
			sawBullet = true
			continue
		}

		if strings.HasSuffix(line, ":") || strings.HasSuffix(line, "?") {
			continue
		}
		if c, ok := newClause(line); ok {
			plain = append(plain, c)
		}
	}

	if sawBullet {
		return bulleted
	}
	return plain
}

func bulletPrefix(line string) string {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}

func newClause(body string) (Clause, bool) {
	body = Normalize(body)
	if body == "" {
		return Clause{}, false
	}
	// Template placeholders like "[List your items]" are not criteria.
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		return Clause{}, false
	}
	return Clause{Text: body, Label: clauseLabel(body)}, true
}

// Normalize lowercases and collapses whitespace so labels from different
// checks compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// clauseLabel picks the item label for a clause: the leading noun-ish token
// run before any state word. "counter clear" → "counter", "no dishes" →
// "dishes".
func clauseLabel(text string) string {
	tokens := strings.Fields(text)
	var kept []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,;:!()")
		if tok == "" || skipWords[tok] {
			continue
		}
		if stateWords[tok] {
			break
		}
		kept = append(kept, tok)
		if len(kept) == 3 {
			break
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}

// skipWords are leading words that carry no item identity.
var skipWords = map[string]bool{
	"no": true, "not": true, "a": true, "an": true, "the": true,
	"any": true, "my": true, "all": true, "some": true,
}

// stateWords end the label portion of a clause.
var stateWords = map[string]bool{
	"clear": true, "clean": true, "empty": true, "tidy": true,
	"made": true, "folded": true, "hung": true, "washed": true,
	"wiped": true, "sorted": true, "stowed": true, "away": true,
	"in": true, "on": true, "off": true, "with": true,
}
