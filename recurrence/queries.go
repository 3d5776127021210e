package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// Recurs reports whether the recurrence produces any occurrence at all:
// it has at least one inclusion rule or explicit inclusion date.
// Exclusion-only configurations never recur.
func (r *Recurrence) Recurs() bool {
	return len(r.rrules) > 0 || r.rdates.Len() > 0 || r.rdateTimes.Len() > 0
}

// RecursOnDate reports whether at least one occurrence survives on the
// calendar date of date, evaluated in the recurrence's own time
// reference.
func (r *Recurrence) RecursOnDate(date time.Time) bool {
	loc := r.location()
	d := dateOf(date)
	y, m, dd := d.Date()

	// Nothing can recur before the anchor.
	if time.Date(y, m, dd, 23, 59, 59, 0, loc).Before(r.start) {
		return false
	}

	if r.exdates.Contains(d) {
		return false
	}
	// A floating recurrence has a single slot per day, so a matching
	// exclusion rule excludes the whole day outright.
	if r.floating {
		for _, ex := range r.exrules {
			if ex.RecursOn(d, loc) {
				return false
			}
		}
	}

	if r.rdates.Contains(d) {
		return true
	}

	// Establish whether the day recurs at all, cheapest source first.
	recurs := dateOf(r.start.In(loc)).Equal(d)
	for i := 0; i < r.rdateTimes.Len() && !recurs; i++ {
		recurs = dateOf(r.rdateTimes.At(i).In(loc)).Equal(d)
	}
	for i := 0; i < len(r.rrules) && !recurs; i++ {
		recurs = r.rrules[i].RecursOn(d, loc)
	}
	if !recurs {
		return false
	}

	// The day recurs; check whether any of its times are excluded.
	exon := false
	for i := 0; i < r.exdateTimes.Len() && !exon; i++ {
		exon = dateOf(r.exdateTimes.At(i).In(loc)).Equal(d)
	}
	if !r.floating { // floating exclusion rules were handled above
		for i := 0; i < len(r.exrules) && !exon; i++ {
			exon = r.exrules[i].RecursOn(d, loc)
		}
	}
	if !exon {
		return true
	}
	// Some time on this day is excluded; only a full enumeration can
	// tell whether another one survives.
	return len(r.TimesOnDate(d)) > 0
}

// RecursAt reports whether an occurrence falls exactly at t. The instant
// is converted into the recurrence's own time reference first; any
// exclusion source wins over every inclusion source.
func (r *Recurrence) RecursAt(t time.Time) bool {
	dt := t.In(r.location())
	if r.floating {
		dt = dateOf(dt)
	}

	if r.exdateTimes.Contains(dt) || r.exdates.Contains(dateOf(dt)) {
		return false
	}
	for _, ex := range r.exrules {
		if ex.RecursAt(dt) {
			return false
		}
	}

	if r.startForCompare().Equal(dt) || r.rdateTimes.Contains(dt) {
		return true
	}
	for _, rule := range r.rrules {
		if rule.RecursAt(dt) {
			return true
		}
	}
	return false
}

// EndAt returns the latest instant of the whole recurrence, combining
// the anchor, the last explicit inclusion date and instant, and each
// inclusion rule's own end. If any inclusion rule is open-ended the
// recurrence has no end.
func (r *Recurrence) EndAt() mo.Option[time.Time] {
	end := r.startForCompare()
	if r.rdates.Len() > 0 {
		last := r.rdates.Last()
		y, m, d := last.Date()
		promoted := time.Date(y, m, d, 0, 0, 0, 0, r.location())
		if promoted.After(end) {
			end = promoted
		}
	}
	if r.rdateTimes.Len() > 0 {
		if last := r.rdateTimes.Last(); last.After(end) {
			end = last
		}
	}
	for _, rule := range r.rrules {
		ruleEnd, ok := rule.EndAt().Get()
		if !ok {
			// An open-ended rule cannot be bounded by finite ones.
			return mo.None[time.Time]()
		}
		if ruleEnd.After(end) {
			end = ruleEnd
		}
	}
	return mo.Some(end)
}

// EndDate returns the calendar date of EndAt as a midnight-UTC value.
func (r *Recurrence) EndDate() mo.Option[time.Time] {
	end, ok := r.EndAt().Get()
	if !ok {
		return mo.None[time.Time]()
	}
	return mo.Some(dateOf(end.In(r.location())))
}
