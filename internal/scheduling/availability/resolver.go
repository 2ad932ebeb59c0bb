// Package availability computes the effective open interval of a staff member
// on a date by running an ordered chain of layers over the schedule data.
// Each layer either decides the outcome or defers to the next one.
package availability

import (
	"staffbook/pkg/clock"
	"staffbook/pkg/model"
)

const (
	msgTimeOff           = "approved time-off"
	msgOverrideClosed    = "unavailable on this date"
	msgOverrideMalformed = "date override has an invalid interval"
	msgNoSchedule        = "no schedule for this day"
)

// Inputs is the schedule data relevant to one staff/date pair.
type Inputs struct {
	StaffID  string
	Date     string
	TimeOff  []*model.TimeOffRequest
	Override *model.AvailabilityOverride
	Weekly   *model.WeeklySchedule
}

// Outcome is the result of a single layer.
type Outcome struct {
	decided bool
	window  model.AvailabilityWindow
}

func (o Outcome) Decided() bool {
	return o.decided
}

func (o Outcome) Window() model.AvailabilityWindow {
	return o.window
}

func Decide(w model.AvailabilityWindow) Outcome {
	return Outcome{decided: true, window: w}
}

func Defer() Outcome {
	return Outcome{}
}

type Layer func(in Inputs) Outcome

// Layers in priority order.
var Layers = []Layer{TimeOffLayer, OverrideLayer, WeeklyLayer}

func Resolve(in Inputs) model.AvailabilityWindow {
	return ResolveWith(in, Layers...)
}

// ResolveWith runs layers in order and returns the first decision. If every
// layer defers the day is closed.
func ResolveWith(in Inputs, layers ...Layer) model.AvailabilityWindow {
	for _, layer := range layers {
		if out := layer(in); out.decided {
			return out.window
		}
	}
	return closed(in, model.SourceNone, model.ReasonNoSchedule, msgNoSchedule)
}

func TimeOffLayer(in Inputs) Outcome {
	for _, t := range in.TimeOff {
		if t != nil && t.Covers(in.Date) {
			return Decide(closed(in, model.SourceTimeOff, model.ReasonTimeOff, msgTimeOff))
		}
	}
	return Defer()
}

// OverrideLayer handles a per-date override. An available override without
// its own interval defers, so the weekly interval and break still apply.
func OverrideLayer(in Inputs) Outcome {
	o := in.Override
	if o == nil {
		return Defer()
	}

	if !o.Available {
		reason := o.Reason
		if reason == "" {
			reason = msgOverrideClosed
		}
		return Decide(closed(in, model.SourceOverride, model.ReasonOverrideUnavailable, reason))
	}

	if !o.HasInterval() {
		return Defer()
	}

	interval, err := clock.NewInterval(o.StartTime, o.EndTime)
	if err != nil {
		return Decide(closed(in, model.SourceOverride, model.ReasonOverrideUnavailable, msgOverrideMalformed))
	}
	return Decide(open(in, model.SourceOverride, interval, nil))
}

func WeeklyLayer(in Inputs) Outcome {
	w := in.Weekly
	if w == nil || !w.Available {
		return Decide(closed(in, model.SourceWeekly, model.ReasonNoSchedule, msgNoSchedule))
	}

	interval, err := w.OpenInterval()
	if err != nil {
		return Decide(closed(in, model.SourceWeekly, model.ReasonNoSchedule, msgNoSchedule))
	}

	// a break that does not sit inside the open interval is ignored
	br, err := w.BreakInterval()
	if err != nil || (br != nil && !interval.Contains(*br)) {
		br = nil
	}
	return Decide(open(in, model.SourceWeekly, interval, br))
}

func closed(in Inputs, source model.WindowSource, code, reason string) model.AvailabilityWindow {
	return model.AvailabilityWindow{
		StaffID:    in.StaffID,
		Date:       in.Date,
		Closed:     true,
		Source:     source,
		ReasonCode: code,
		Reason:     reason,
	}
}

func open(in Inputs, source model.WindowSource, interval clock.Interval, br *clock.Interval) model.AvailabilityWindow {
	w := model.AvailabilityWindow{
		StaffID:   in.StaffID,
		Date:      in.Date,
		Source:    source,
		OpenStart: interval.StartString(),
		OpenEnd:   interval.EndString(),
		Open:      interval,
	}
	if br != nil {
		b := *br
		w.Break = &b
		w.BreakStart = b.StartString()
		w.BreakEnd = b.EndString()
	}
	return w
}
