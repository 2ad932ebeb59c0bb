// Package recurrence decides which calendar dates a recurring rule produces.
package recurrence

import (
	"fmt"
	"time"

	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

// Candidate is a date the rule's pattern matches. Skip is set when the date
// falls outside the rule's own start/end range.
type Candidate struct {
	Date time.Time
	Skip model.SkipReason
}

func (c Candidate) DateString() string {
	return clock.FormatDate(c.Date)
}

// ValidateRule checks the pattern-specific shape of a rule.
func ValidateRule(rule *model.RecurringRule) error {
	if _, err := clock.NewInterval(rule.StartTime, rule.EndTime); err != nil {
		return err
	}

	start, err := clock.ParseDate(rule.StartDate)
	if err != nil {
		return err
	}
	if rule.EndDate != "" {
		end, err := clock.ParseDate(rule.EndDate)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("end_date %s is before start_date %s", rule.EndDate, rule.StartDate)
		}
	}

	switch rule.Pattern {
	case model.PatternDaily:
		return nil
	case model.PatternWeekly, model.PatternBiweekly:
		if rule.RecurrenceDay == nil || *rule.RecurrenceDay < 0 || *rule.RecurrenceDay > 6 {
			return fmt.Errorf("%s pattern requires recurrence_day between 0 and 6", rule.Pattern)
		}
	case model.PatternMonthly:
		if rule.RecurrenceDay == nil || *rule.RecurrenceDay < 1 || *rule.RecurrenceDay > 31 {
			return fmt.Errorf("monthly pattern requires recurrence_day between 1 and 31")
		}
	default:
		return fmt.Errorf("unknown pattern %q", rule.Pattern)
	}
	return nil
}

// Occurs reports whether d matches the rule's pattern. start anchors the
// biweekly parity.
func Occurs(rule *model.RecurringRule, start, d time.Time) bool {
	switch rule.Pattern {
	case model.PatternDaily:
		return true
	case model.PatternWeekly:
		return rule.RecurrenceDay != nil && int(d.Weekday()) == *rule.RecurrenceDay
	case model.PatternBiweekly:
		if rule.RecurrenceDay == nil || int(d.Weekday()) != *rule.RecurrenceDay {
			return false
		}
		return floorDiv(clock.DaysBetween(start, d), 7)%2 == 0
	case model.PatternMonthly:
		return rule.RecurrenceDay != nil && d.Day() == *rule.RecurrenceDay
	}
	return false
}

// Candidates scans [from, to] day by day and returns the dates matching the
// rule's pattern in ascending order.
func Candidates(rule *model.RecurringRule, from, to time.Time) ([]Candidate, error) {
	start, err := clock.ParseDate(rule.StartDate)
	if err != nil {
		return nil, err
	}

	var end time.Time
	hasEnd := rule.EndDate != ""
	if hasEnd {
		if end, err = clock.ParseDate(rule.EndDate); err != nil {
			return nil, err
		}
	}

	var out []Candidate
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !Occurs(rule, start, d) {
			continue
		}
		c := Candidate{Date: d}
		switch {
		case d.Before(start):
			c.Skip = model.SkipBeforeStart
		case hasEnd && d.After(end):
			c.Skip = model.SkipAfterEnd
		}
		out = append(out, c)
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
