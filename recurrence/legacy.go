package recurrence

import (
	"slices"
	"time"
)

// The accessors in this file emulate the old single-rule interface: they
// operate on the default rule only, i.e. the first element of the
// inclusion-rule list, and return a neutral value when there is none.

// Frequency returns the default rule's frequency, or 0 without one.
func (r *Recurrence) Frequency() int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.Frequency()
	}
	return 0
}

// SetFrequency sets the default rule's frequency, creating the rule if
// needed. Non-positive frequencies are ignored.
func (r *Recurrence) SetFrequency(freq int) {
	if r.readOnly || freq <= 0 {
		return
	}
	if rule := r.defaultRule(true); rule != nil {
		rule.SetFrequency(freq)
	}
	r.updated()
}

// Duration returns the default rule's occurrence count: -1 open-ended,
// 0 bounded by an end instant, or 0 without a rule.
func (r *Recurrence) Duration() int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.Duration()
	}
	return 0
}

// SetDuration sets the default rule's occurrence count, creating the
// rule if needed.
func (r *Recurrence) SetDuration(count int) {
	if r.readOnly {
		return
	}
	rule := r.defaultRule(true)
	if rule == nil {
		return
	}
	rule.SetDuration(count)
	r.updated()
}

// DurationTo counts the default rule's occurrences up to and including
// t.
func (r *Recurrence) DurationTo(t time.Time) int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.DurationTo(t)
	}
	return 0
}

// SetEndDateTime bounds the default rule by an end instant, creating the
// rule if needed.
func (r *Recurrence) SetEndDateTime(end time.Time) {
	if r.readOnly {
		return
	}
	rule := r.defaultRule(true)
	if rule == nil {
		return
	}
	rule.SetUntil(end)
	r.updated()
}

// SetEndDate bounds the default rule by the end of the given calendar
// date: the anchor's time-of-day on that date, or 23:59:59 for floating
// recurrences.
func (r *Recurrence) SetEndDate(date time.Time) {
	loc := r.location()
	y, m, d := date.Date()
	var end time.Time
	if r.floating {
		end = time.Date(y, m, d, 23, 59, 59, 0, loc)
	} else {
		hh, mm, ss := r.start.In(loc).Clock()
		end = time.Date(y, m, d, hh, mm, ss, 0, loc)
	}
	r.SetEndDateTime(end)
}

// WeekStart returns the default rule's week-start day (1 = Monday), or
// Monday without a rule.
func (r *Recurrence) WeekStart() int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.WeekStart()
	}
	return 1
}

// Days returns a Monday-first bitmask of the weekdays the default rule
// recurs on, counting only positionless by-day entries.
func (r *Recurrence) Days() [7]bool {
	var days [7]bool
	if rule := r.defaultRule(false); rule != nil {
		for _, p := range rule.byDays {
			if p.Pos == 0 && p.Day >= 1 && p.Day <= 7 {
				days[p.Day-1] = true
			}
		}
	}
	return days
}

// MonthDays returns the default rule's by-month-day constraints.
func (r *Recurrence) MonthDays() []int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.ByMonthDays()
	}
	return nil
}

// MonthPositions returns the default rule's by-day constraints.
func (r *Recurrence) MonthPositions() []WeekdayPos {
	if rule := r.defaultRule(false); rule != nil {
		return rule.ByDays()
	}
	return nil
}

// YearDays returns the default rule's by-year-day constraints.
func (r *Recurrence) YearDays() []int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.ByYearDays()
	}
	return nil
}

// YearDates returns the day-of-month constraints of a yearly rule; they
// share the by-month-day field with monthly rules.
func (r *Recurrence) YearDates() []int {
	return r.MonthDays()
}

// YearMonths returns the default rule's by-month constraints.
func (r *Recurrence) YearMonths() []int {
	if rule := r.defaultRule(false); rule != nil {
		return rule.ByMonths()
	}
	return nil
}

// YearPositions returns the weekday-position constraints of a yearly
// rule; they share the by-day field with monthly rules.
func (r *Recurrence) YearPositions() []WeekdayPos {
	return r.MonthPositions()
}

// setNewRecurrenceType discards every inclusion rule and installs a
// single open-ended rule with the requested cadence and frequency.
func (r *Recurrence) setNewRecurrenceType(period Period, freq int) *Rule {
	if r.readOnly || freq <= 0 {
		return nil
	}
	for _, rule := range r.rrules {
		rule.removeObserver(r)
	}
	r.rrules = nil
	r.updated()
	rule := r.defaultRule(true)
	if rule == nil {
		return nil
	}
	rule.SetPeriod(period)
	rule.SetFrequency(freq)
	rule.SetDuration(-1)
	return rule
}

// SetMinutely replaces the recurrence with one every freq minutes.
func (r *Recurrence) SetMinutely(freq int) {
	if r.setNewRecurrenceType(PeriodMinutely, freq) != nil {
		r.updated()
	}
}

// SetHourly replaces the recurrence with one every freq hours.
func (r *Recurrence) SetHourly(freq int) {
	if r.setNewRecurrenceType(PeriodHourly, freq) != nil {
		r.updated()
	}
}

// SetDaily replaces the recurrence with one every freq days.
func (r *Recurrence) SetDaily(freq int) {
	if r.setNewRecurrenceType(PeriodDaily, freq) != nil {
		r.updated()
	}
}

// SetWeekly replaces the recurrence with one every freq weeks, with
// weeks starting on weekStart (1 = Monday). Use AddWeeklyDays to narrow
// the weekdays.
func (r *Recurrence) SetWeekly(freq, weekStart int) {
	rule := r.setNewRecurrenceType(PeriodWeekly, freq)
	if rule == nil {
		return
	}
	rule.SetWeekStart(weekStart)
	r.updated()
}

// AddWeeklyDays adds the set weekdays (Monday-first bitmask) to the
// default rule.
func (r *Recurrence) AddWeeklyDays(days [7]bool) {
	r.addMonthlyPosDays(0, days)
}

// SetMonthly replaces the recurrence with one every freq months.
// Constrain it with AddMonthlyPos or AddMonthlyDate.
func (r *Recurrence) SetMonthly(freq int) {
	if r.setNewRecurrenceType(PeriodMonthly, freq) != nil {
		r.updated()
	}
}

// AddMonthlyPos adds a weekday-position constraint (e.g. pos -1, day 5
// for the last Friday) to the default rule, which must already exist.
// Adding a constraint already present has no effect. Positions outside
// [-53, 53] are ignored; 53 is allowed for yearly rules.
func (r *Recurrence) AddMonthlyPos(pos, day int) {
	if r.readOnly || pos > 53 || pos < -53 {
		return
	}
	rule := r.defaultRule(false)
	if rule == nil {
		return
	}
	p := WeekdayPos{Day: day, Pos: pos}
	positions := rule.byDays
	if slices.Contains(positions, p) {
		return
	}
	rule.SetByDays(append(positions, p))
	r.updated()
}

func (r *Recurrence) addMonthlyPosDays(pos int, days [7]bool) {
	if r.readOnly || pos > 53 || pos < -53 {
		return
	}
	rule := r.defaultRule(false)
	if rule == nil {
		return
	}
	positions := rule.byDays
	changed := false
	for i, set := range days {
		if !set {
			continue
		}
		p := WeekdayPos{Day: i + 1, Pos: pos}
		if !slices.Contains(positions, p) {
			positions = append(positions, p)
			changed = true
		}
	}
	if changed {
		rule.SetByDays(positions)
		r.updated()
	}
}

// AddMonthlyDate adds a day-of-month constraint to the default rule,
// creating the rule if needed. Days outside [-31, 31] are ignored.
func (r *Recurrence) AddMonthlyDate(day int) {
	if r.readOnly || day > 31 || day < -31 {
		return
	}
	rule := r.defaultRule(true)
	if rule == nil {
		return
	}
	monthDays := rule.byMonthDays
	if slices.Contains(monthDays, day) {
		return
	}
	rule.SetByMonthDays(append(monthDays, day))
	r.updated()
}

// SetYearly replaces the recurrence with one every freq years.
func (r *Recurrence) SetYearly(freq int) {
	if r.setNewRecurrenceType(PeriodYearly, freq) != nil {
		r.updated()
	}
}

// AddYearlyDay adds a day-number-within-year constraint to the default
// rule, which must already exist.
func (r *Recurrence) AddYearlyDay(day int) {
	if r.readOnly {
		return
	}
	rule := r.defaultRule(false)
	if rule == nil {
		return
	}
	days := rule.byYearDays
	if slices.Contains(days, day) {
		return
	}
	rule.SetByYearDays(append(days, day))
	r.updated()
}

// AddYearlyDate adds the day-of-month part of a yearly date constraint.
func (r *Recurrence) AddYearlyDate(day int) {
	r.AddMonthlyDate(day)
}

// AddYearlyPos adds weekday-position constraints (n-th weekday of the
// period) for a yearly rule.
func (r *Recurrence) AddYearlyPos(pos int, days [7]bool) {
	r.addMonthlyPosDays(pos, days)
}

// AddYearlyMonth adds the month part of a yearly date constraint to the
// default rule, which must already exist. Months outside [1, 12] are
// ignored.
func (r *Recurrence) AddYearlyMonth(month int) {
	if r.readOnly || month < 1 || month > 12 {
		return
	}
	rule := r.defaultRule(false)
	if rule == nil {
		return
	}
	months := rule.byMonths
	if slices.Contains(months, month) {
		return
	}
	rule.SetByMonths(append(months, month))
	r.updated()
}

// ShiftTimes reinterprets the anchor, both explicit instant lists and
// every owned rule from one zone to another, preserving wall-clock
// readings.
func (r *Recurrence) ShiftTimes(oldLoc, newLoc *time.Location) {
	if r.readOnly {
		return
	}
	r.start = shiftZone(r.start, oldLoc, newLoc)

	shifted := r.rdateTimes.Values()
	for i, t := range shifted {
		shifted[i] = shiftZone(t, oldLoc, newLoc)
	}
	r.rdateTimes.Replace(shifted)

	shifted = r.exdateTimes.Values()
	for i, t := range shifted {
		shifted[i] = shiftZone(t, oldLoc, newLoc)
	}
	r.exdateTimes.Replace(shifted)

	for _, rule := range r.rrules {
		rule.ShiftTimes(oldLoc, newLoc)
	}
	for _, rule := range r.exrules {
		rule.ShiftTimes(oldLoc, newLoc)
	}
	r.updated()
}
