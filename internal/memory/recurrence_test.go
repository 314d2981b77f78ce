package memory

import (
	"testing"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkAt(day int, eligible bool, outOfPlace []string, clear []string) model.CheckRecord {
	rec := model.CheckRecord{
		SpotID:    1,
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Eligible:  eligible,
		Status:    model.StatusSorted,
	}
	for _, label := range outOfPlace {
		rec.Verdicts = append(rec.Verdicts, model.ItemVerdict{Label: label, State: model.ItemOutOfPlace})
		rec.Status = model.StatusNeedsAttention
	}
	for _, label := range clear {
		rec.Verdicts = append(rec.Verdicts, model.ItemVerdict{Label: label, State: model.ItemClear})
	}
	return rec
}

func TestRecurrence_ReplayMatchesIncremental(t *testing.T) {
	histories := [][]model.CheckRecord{
		{},
		{
			checkAt(0, true, []string{"counter"}, []string{"sink"}),
		},
		{
			checkAt(0, true, []string{"counter"}, []string{"sink"}),
			checkAt(1, true, nil, []string{"counter", "sink"}),
			checkAt(2, false, []string{"counter"}, nil),
			checkAt(3, true, []string{"counter", "papers"}, []string{"sink"}),
			checkAt(4, true, []string{"papers"}, []string{"counter", "sink"}),
		},
	}

	r := New()
	for i, history := range histories {
		// Incremental: fold records in one at a time.
		var incremental []model.RecurrenceStat
		for j := range history {
			rec := history[j]
			incremental = r.Apply(history[:j], &rec)
		}

		replayed := r.Replay(history)
		assert.Equal(t, replayed, incremental, "history %d", i)
	}
}

func TestRecurrence_FourOfFiveIsRecurring(t *testing.T) {
	// "counter" out of place on 4 of the last 5 eligible checks, with
	// threshold 0.5 and min occurrences 2.
	history := []model.CheckRecord{
		checkAt(0, true, []string{"counter"}, []string{"sink"}),
		checkAt(1, true, []string{"counter"}, []string{"sink"}),
		checkAt(2, true, nil, []string{"counter", "sink"}),
		checkAt(3, true, []string{"counter"}, []string{"sink"}),
		checkAt(4, true, []string{"counter"}, []string{"sink"}),
	}

	r := NewWithPolicy(0.5, 2)
	stats := r.Replay(history)

	var counter *model.RecurrenceStat
	for i := range stats {
		if stats[i].Label == "counter" {
			counter = &stats[i]
		}
	}
	require.NotNil(t, counter)
	assert.Equal(t, 4, counter.Occurrences)
	assert.Equal(t, 5, counter.EligibleChecks)
	assert.InDelta(t, 0.8, counter.Ratio(), 0.001)
	assert.True(t, r.Recurring(counter))

	verdicts := r.Annotate([]model.ItemVerdict{
		{Label: "counter", State: model.ItemOutOfPlace},
		{Label: "sink", State: model.ItemClear},
	}, stats)
	assert.True(t, verdicts[0].Recurring)
	assert.Equal(t, 4, verdicts[0].RecurringCount)
	assert.False(t, verdicts[1].Recurring)
}

func TestRecurrence_SingleOccurrenceNotRecurring(t *testing.T) {
	history := []model.CheckRecord{
		checkAt(0, true, []string{"mug"}, nil),
	}

	r := New()
	stats := r.Replay(history)
	require.Len(t, stats, 1)
	assert.Equal(t, 1.0, stats[0].Ratio())
	assert.False(t, r.Recurring(&stats[0]), "one data point must not flag recurrence")
}

func TestRecurrence_IneligibleChecksExcluded(t *testing.T) {
	history := []model.CheckRecord{
		checkAt(0, true, []string{"mug"}, nil),
		checkAt(1, false, []string{"mug"}, nil),
		checkAt(2, false, []string{"mug"}, nil),
	}

	r := New()
	stats := r.Replay(history)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Occurrences)
	assert.Equal(t, 1, stats[0].EligibleChecks)
}

func TestRecurrence_AbsenceLowersFrequency(t *testing.T) {
	history := []model.CheckRecord{
		checkAt(0, true, []string{"mug"}, nil),
		checkAt(1, true, []string{"mug"}, nil),
	}
	r := New()
	stats := r.Replay(history)
	require.Len(t, stats, 1)
	assert.Equal(t, 1.0, stats[0].Ratio())

	// Two clean checks: the mug stays in history but its ratio drops.
	history = append(history,
		checkAt(2, true, nil, []string{"mug"}),
		checkAt(3, true, nil, []string{"mug"}),
	)
	stats = r.Replay(history)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Occurrences)
	assert.Equal(t, 4, stats[0].EligibleChecks)
	assert.Equal(t, 0.5, stats[0].Ratio())
}

func TestRecurrence_WindowBounded(t *testing.T) {
	var history []model.CheckRecord
	for day := 0; day < WindowSize+10; day++ {
		history = append(history, checkAt(day, true, []string{"papers"}, nil))
	}

	r := New()
	stats := r.Replay(history)
	require.Len(t, stats, 1)
	assert.Equal(t, WindowSize, stats[0].Occurrences)
	assert.Equal(t, WindowSize, stats[0].EligibleChecks)
}

func TestInsights(t *testing.T) {
	history := []model.CheckRecord{
		// Two sorted Sundays at 10am, one rough Monday.
		{Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Status: model.StatusSorted},
		{Timestamp: time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC), Status: model.StatusSorted},
		{Timestamp: time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC), Status: model.StatusNeedsAttention},
	}

	in := Insights(history, time.UTC)
	assert.Equal(t, 3, in.TotalChecks)
	assert.Equal(t, "Sunday", in.BestDay)
	assert.Equal(t, "Monday", in.WorstDay)
	assert.Equal(t, "10:00 AM", in.UsuallySortedBy)
}

func TestInsights_Empty(t *testing.T) {
	in := Insights(nil, time.UTC)
	assert.Equal(t, model.SpotInsights{}, in)
}
