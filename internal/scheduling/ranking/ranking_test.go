package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"staffbook/pkg/model"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func entry(id string, priority int, minute int) *model.WaitlistEntry {
	return &model.WaitlistEntry{
		ID:        id,
		ServiceID: "svc-1",
		Priority:  priority,
		Status:    model.WaitlistActive,
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func ids(entries []*model.WaitlistEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

var freed = model.FreedSlot{
	ServiceID: "svc-1",
	StaffID:   "staff-1",
	Date:      "2025-03-10",
	StartTime: "10:00",
	EndTime:   "11:00",
}

func TestRank_PriorityThenFIFO(t *testing.T) {
	entries := []*model.WaitlistEntry{entry("c1", 5, 0), entry("c2", 5, 1), entry("c3", 1, 2)}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(Rank(entries, freed)))
}

func TestRank_HigherPriorityFirstRegardlessOfAge(t *testing.T) {
	entries := []*model.WaitlistEntry{entry("old", 1, 0), entry("mid", 10, 5), entry("new", 10, 9)}
	assert.Equal(t, []string{"mid", "new", "old"}, ids(Rank(entries, freed)))
}

func TestRank_InputOrderReversedStillFIFO(t *testing.T) {
	entries := []*model.WaitlistEntry{entry("c3", 5, 2), entry("c2", 5, 1), entry("c1", 5, 0)}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(Rank(entries, freed)))
}

func TestRank_FiltersNonMatching(t *testing.T) {
	otherService := entry("svc", 9, 0)
	otherService.ServiceID = "svc-2"

	notified := entry("notified", 9, 0)
	notified.Status = model.WaitlistNotified

	wrongDate := entry("date", 9, 0)
	wrongDate.PreferredDate = "2025-03-11"

	rightDate := entry("right-date", 2, 0)
	rightDate.PreferredDate = "2025-03-10"

	wrongStaff := entry("staff", 9, 0)
	wrongStaff.PreferredStaffID = "staff-2"

	rightStaff := entry("right-staff", 3, 0)
	rightStaff.PreferredStaffID = "staff-1"

	entries := []*model.WaitlistEntry{otherService, notified, wrongDate, rightDate, wrongStaff, rightStaff, nil}
	assert.Equal(t, []string{"right-staff", "right-date"}, ids(Rank(entries, freed)))
}

func TestMatches_StafflessSlotRejectsStaffPreference(t *testing.T) {
	slot := freed
	slot.StaffID = ""

	e := entry("e", 1, 0)
	assert.True(t, Matches(e, slot))

	e.PreferredStaffID = "staff-1"
	assert.False(t, Matches(e, slot))
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil, freed))
}
