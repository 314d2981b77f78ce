package report

import (
	"strconv"
	"strings"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
)

// Input carries everything the composer needs for one report.
type Input struct {
	SpotName       string
	Voice          model.VoiceKey
	CustomTemplate string
	Verdicts       []model.ItemVerdict
	Status         model.SpotStatus
	Notes          model.CheckNotes
	Streak         model.StreakState
}

// Composer renders check results. It holds no state; the voice tables do
// all the talking.
type Composer struct{}

// NewComposer creates a report composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose renders a deterministic report: header, out-of-place group,
// looking-good group, closing remark, streak footer. Identical input always
// yields an identical string.
func (c *Composer) Compose(in Input) string {
	tbl, ok := phrases[in.Voice]
	if in.Voice == model.VoiceCustom {
		tbl = customTable(in.CustomTemplate)
	} else if !ok {
		tbl = phrases[model.DefaultVoice]
	}

	var lines []string
	add := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}

	base := map[string]string{
		"{spot}":   in.SpotName,
		"{streak}": strconv.Itoa(in.Streak.Current),
		"{best}":   strconv.Itoa(in.Streak.Best),
	}

	if in.Status == model.StatusSorted {
		add(expand(tbl.headerSorted, base))
	} else {
		add(expand(tbl.headerAttention, base))
	}

	toSort := filterState(in.Verdicts, model.ItemOutOfPlace)
	looking := filterState(in.Verdicts, model.ItemClear)

	if len(toSort) > 0 {
		add(expand(tbl.toSortHeading, base))
		for _, v := range toSort {
			add(expand(itemPhrase(tbl, v), itemVars(base, v)))
		}
	}

	if len(looking) > 0 {
		add(expand(tbl.lookingHeading, base))
		for _, v := range looking {
			add(expand(tbl.goodLine, itemVars(base, v)))
		}
	}

	if in.Notes.Main != "" {
		add(in.Notes.Main)
	}

	if in.Status == model.StatusSorted {
		add(expand(tbl.closingSorted, base))
	} else {
		add(expand(tbl.closingMixed, base))
	}

	if in.Streak.Current > 0 || in.Streak.Best > 0 {
		if in.Streak.Best > in.Streak.Current {
			add(expand(tbl.streakWithBest, base))
		} else {
			add(expand(tbl.streakLine, base))
		}
	}

	return strings.Join(lines, "\n")
}

func itemPhrase(tbl phraseTable, v model.ItemVerdict) string {
	if v.Recurring {
		return tbl.itemRecurring
	}
	return tbl.itemLine
}

func itemVars(base map[string]string, v model.ItemVerdict) map[string]string {
	vars := make(map[string]string, len(base)+4)
	for k, val := range base {
		vars[k] = val
	}
	vars["{item}"] = v.Label
	note := v.Note
	if note == "" {
		note = "out of place"
	}
	vars["{note}"] = note
	vars["{count}"] = strconv.Itoa(v.RecurringCount)
	vars["{nth}"] = ordinal(v.RecurringCount)
	return vars
}

// expand substitutes recognized placeholders. Unrecognized ones stay
// verbatim so a typo in a custom template never becomes an error.
func expand(phrase string, vars map[string]string) string {
	if phrase == "" {
		return ""
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(phrase)
}

func filterState(verdicts []model.ItemVerdict, state model.ItemState) []model.ItemVerdict {
	var out []model.ItemVerdict
	for _, v := range verdicts {
		if v.State == state {
			out = append(out, v)
		}
	}
	return out
}

// ordinal renders 1 → 1st, 2 → 2nd, 3 → 3rd, 4 → 4th.
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
