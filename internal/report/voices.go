// Package report renders structured check results into natural language.
// Voices differ only by phrase table: adding a voice means adding a table.
package report

import "github.com/kozzzzzzy/twin-sync-addon/internal/model"

// phraseTable holds every line a voice can emit. Phrases may use the
// placeholders {spot}, {item}, {note}, {count}, {nth}, {streak} and {best};
// anything else is left verbatim.
type phraseTable struct {
	headerSorted    string
	headerAttention string
	toSortHeading   string
	lookingHeading  string
	itemLine        string
	itemRecurring   string
	goodLine        string
	closingSorted   string
	closingMixed    string
	streakLine      string
	streakWithBest  string
}

var phrases = map[model.VoiceKey]phraseTable{
	model.VoiceDirect: {
		headerSorted:    "{spot}: sorted.",
		headerAttention: "{spot}: needs attention.",
		toSortHeading:   "To sort:",
		lookingHeading:  "In place:",
		itemLine:        "- {item}: {note}",
		itemRecurring:   "- {item}: {note} ({nth} time this period)",
		goodLine:        "- {item}",
		closingSorted:   "Nothing to do.",
		closingMixed:    "Handle the list above.",
		streakLine:      "Streak: {streak} days.",
		streakWithBest:  "Streak: {streak} days. Best: {best}.",
	},
	model.VoiceSupportive: {
		headerSorted:    "{spot} is looking sorted, nice work!",
		headerAttention: "{spot} needs a little attention.",
		toSortHeading:   "Worth a quick sort:",
		lookingHeading:  "Already looking good:",
		itemLine:        "- {item} ({note})",
		itemRecurring:   "- {item} ({note}), that's the {nth} time this period. It keeps sneaking back",
		goodLine:        "- {item}",
		closingSorted:   "Everything matches your ready state. Enjoy it!",
		closingMixed:    "A couple of small things and you're there.",
		streakLine:      "You're on a {streak}-day streak. Keep it going!",
		streakWithBest:  "You're on a {streak}-day streak, and your best is {best}.",
	},
	model.VoiceAnalytical: {
		headerSorted:    "{spot}: status sorted.",
		headerAttention: "{spot}: status needs_attention.",
		toSortHeading:   "Out of place:",
		lookingHeading:  "Matching definition:",
		itemLine:        "- {item}: {note}",
		itemRecurring:   "- {item}: {note} [recurring, {nth} occurrence this period]",
		goodLine:        "- {item}",
		closingSorted:   "All clauses satisfied this check.",
		closingMixed:    "Recurring items above are the trend to watch.",
		streakLine:      "Current streak: {streak} days.",
		streakWithBest:  "Current streak: {streak} days; historical best: {best}.",
	},
	model.VoiceMinimal: {
		headerSorted:    "{spot}: sorted",
		headerAttention: "{spot}:",
		toSortHeading:   "to sort:",
		lookingHeading:  "good:",
		itemLine:        "- {item}",
		itemRecurring:   "- {item} ({count}x)",
		goodLine:        "- {item}",
		closingSorted:   "",
		closingMixed:    "",
		streakLine:      "{streak}d",
		streakWithBest:  "{streak}d / best {best}d",
	},
	model.VoiceGentleNudge: {
		headerSorted:    "{spot} is in a good place right now.",
		headerAttention: "{spot} could use a moment, whenever you're ready.",
		toSortHeading:   "If you feel like it:",
		lookingHeading:  "Going well:",
		itemLine:        "- maybe have a look at the {item} ({note})",
		itemRecurring:   "- the {item} is back ({nth} time this period). No pressure, it happens",
		goodLine:        "- {item}",
		closingSorted:   "Nothing needed today.",
		closingMixed:    "Even one of these counts. Some days are just like this.",
		streakLine:      "Gently holding a {streak}-day streak.",
		streakWithBest:  "Gently holding a {streak}-day streak (best so far: {best}).",
	},
}

// customTable builds the table for the user-templated voice. The template
// drives the per-item lines; the frame around them stays minimal so the
// user's phrasing carries the report.
func customTable(template string) phraseTable {
	tbl := phrases[model.VoiceMinimal]
	if template != "" {
		tbl.itemLine = template
		tbl.itemRecurring = template
	}
	return tbl
}
