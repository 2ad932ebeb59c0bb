package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

func day(n int) *int { return &n }

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := clock.ParseDate(s)
	require.NoError(t, err)
	return d
}

func dates(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.DateString())
	}
	return out
}

func TestCandidates_WeeklyMondaysInJanuary(t *testing.T) {
	rule := &model.RecurringRule{
		Pattern:       model.PatternWeekly,
		RecurrenceDay: day(1),
		StartDate:     "2024-01-01",
		EndDate:       "2024-01-31",
		StartTime:     "10:00",
		EndTime:       "11:00",
	}

	got, err := Candidates(rule, date(t, "2024-01-01"), date(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}, dates(got))
	for _, c := range got {
		assert.Empty(t, c.Skip)
	}
}

func TestCandidates_Daily(t *testing.T) {
	rule := &model.RecurringRule{Pattern: model.PatternDaily, StartDate: "2024-02-27"}

	got, err := Candidates(rule, date(t, "2024-02-27"), date(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, dates(got))
}

func TestCandidates_BiweeklyParityFromStart(t *testing.T) {
	rule := &model.RecurringRule{
		Pattern:       model.PatternBiweekly,
		RecurrenceDay: day(3),
		StartDate:     "2024-01-03",
	}

	got, err := Candidates(rule, date(t, "2024-01-01"), date(t, "2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-03", "2024-01-17", "2024-01-31", "2024-02-14", "2024-02-28"}, dates(got))
}

// A start date that is not itself a matching weekday still anchors parity.
func TestCandidates_BiweeklyStartMidWeek(t *testing.T) {
	rule := &model.RecurringRule{
		Pattern:       model.PatternBiweekly,
		RecurrenceDay: day(1),
		StartDate:     "2024-01-03",
	}

	got, err := Candidates(rule, date(t, "2024-01-03"), date(t, "2024-02-05"))
	require.NoError(t, err)
	// 2024-01-08 is 5 days after start (week 0), 2024-01-15 is week 1
	assert.Equal(t, []string{"2024-01-08", "2024-01-22", "2024-02-05"}, dates(got))
}

func TestCandidates_MonthlySkipsShortMonths(t *testing.T) {
	rule := &model.RecurringRule{
		Pattern:       model.PatternMonthly,
		RecurrenceDay: day(31),
		StartDate:     "2024-01-01",
	}

	got, err := Candidates(rule, date(t, "2024-01-01"), date(t, "2024-05-31"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-31", "2024-03-31", "2024-05-31"}, dates(got))
}

func TestCandidates_MarksDatesOutsideRuleRange(t *testing.T) {
	rule := &model.RecurringRule{
		Pattern:       model.PatternWeekly,
		RecurrenceDay: day(1),
		StartDate:     "2024-01-08",
		EndDate:       "2024-01-22",
	}

	got, err := Candidates(rule, date(t, "2024-01-01"), date(t, "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, model.SkipBeforeStart, got[0].Skip)
	assert.Empty(t, got[1].Skip)
	assert.Empty(t, got[2].Skip)
	assert.Empty(t, got[3].Skip)
	assert.Equal(t, model.SkipAfterEnd, got[4].Skip)
}

func TestCandidates_InvalidStartDate(t *testing.T) {
	rule := &model.RecurringRule{Pattern: model.PatternDaily, StartDate: "2024-13-01"}
	_, err := Candidates(rule, date(t, "2024-01-01"), date(t, "2024-01-02"))
	assert.Error(t, err)
}

func TestValidateRule(t *testing.T) {
	base := func() *model.RecurringRule {
		return &model.RecurringRule{
			Pattern:   model.PatternDaily,
			StartDate: "2024-01-01",
			StartTime: "10:00",
			EndTime:   "11:00",
		}
	}

	assert.NoError(t, ValidateRule(base()))

	r := base()
	r.Pattern = model.PatternWeekly
	assert.Error(t, ValidateRule(r), "weekly without day")
	r.RecurrenceDay = day(7)
	assert.Error(t, ValidateRule(r))
	r.RecurrenceDay = day(0)
	assert.NoError(t, ValidateRule(r))

	r = base()
	r.Pattern = model.PatternMonthly
	r.RecurrenceDay = day(0)
	assert.Error(t, ValidateRule(r))
	r.RecurrenceDay = day(15)
	assert.NoError(t, ValidateRule(r))

	r = base()
	r.EndDate = "2023-12-31"
	assert.Error(t, ValidateRule(r))

	r = base()
	r.StartTime = "11:00"
	assert.Error(t, ValidateRule(r))

	r = base()
	r.Pattern = "yearly"
	assert.Error(t, ValidateRule(r))
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 0, floorDiv(6, 7))
	assert.Equal(t, 1, floorDiv(7, 7))
	assert.Equal(t, -1, floorDiv(-1, 7))
	assert.Equal(t, -1, floorDiv(-7, 7))
	assert.Equal(t, -2, floorDiv(-8, 7))
}
