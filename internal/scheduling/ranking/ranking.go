// Package ranking selects and orders waitlist entries for a freed slot.
package ranking

import (
	"sort"

	"staffbook/pkg/model"
)

// Matches reports whether e is an active entry that would accept slot. An
// empty preference matches any date or staff.
func Matches(e *model.WaitlistEntry, slot model.FreedSlot) bool {
	if e == nil || e.Status != model.WaitlistActive {
		return false
	}
	if e.ServiceID != slot.ServiceID {
		return false
	}
	if e.PreferredDate != "" && e.PreferredDate != slot.Date {
		return false
	}
	if e.PreferredStaffID != "" && e.PreferredStaffID != slot.StaffID {
		return false
	}
	return true
}

// Rank filters entries to those matching slot and orders them by priority
// descending, then creation time ascending. Entries equal on both keys keep
// their input order.
func Rank(entries []*model.WaitlistEntry, slot model.FreedSlot) []*model.WaitlistEntry {
	out := make([]*model.WaitlistEntry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, slot) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
