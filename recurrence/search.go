package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// MaxSearchIterations bounds the candidate loop of NextOccurrence and
// PreviousOccurrence. An exclusion rule that perfectly shadows an
// inclusion rule at the same cadence would otherwise never converge;
// exhausting the bound reports no occurrence rather than looping
// forever. The value is deliberate inherited behavior: callers may
// depend on the current convergence horizon, so it must not change
// silently.
const MaxSearchIterations = 1000

// NextOccurrence returns the first occurrence strictly after the given
// instant, or no value when none can be established within the search
// bound.
func (r *Recurrence) NextOccurrence(after time.Time) mo.Option[time.Time] {
	loc := r.location()
	next := after.In(loc)
	if r.floating {
		next = dateOf(next)
	}
	start := r.startForCompare()

	for loop := 0; loop < MaxSearchIterations; loop++ {
		// Gather the nearest candidate from every inclusion source,
		// then keep the earliest; later candidates can never win.
		candidates := newInstantList()
		if next.Before(start) {
			candidates.Insert(start)
		}
		if i := r.rdateTimes.FindGT(next); i >= 0 {
			candidates.Insert(r.rdateTimes.At(i))
		}
		for i := 0; i < r.rdates.Len(); i++ {
			if t := r.promoteDate(r.rdates.At(i)); t.After(next) {
				candidates.Insert(t)
				break
			}
		}
		for _, rule := range r.rrules {
			if t, ok := rule.NextAfter(next).Get(); ok {
				candidates.Insert(t)
			}
		}
		if candidates.Len() == 0 {
			return mo.None[time.Time]()
		}
		next = candidates.First()

		if r.excludes(next) {
			continue
		}
		return mo.Some(next)
	}
	return mo.None[time.Time]()
}

// PreviousOccurrence returns the last occurrence strictly before the
// given instant, or no value when none can be established within the
// search bound.
func (r *Recurrence) PreviousOccurrence(before time.Time) mo.Option[time.Time] {
	loc := r.location()
	prev := before.In(loc)
	if r.floating {
		prev = dateOf(prev)
	}
	start := r.startForCompare()

	for loop := 0; loop < MaxSearchIterations; loop++ {
		candidates := newInstantList()
		if prev.After(start) {
			candidates.Insert(start)
		}
		if i := r.rdateTimes.FindLT(prev); i >= 0 {
			candidates.Insert(r.rdateTimes.At(i))
		}
		for i := r.rdates.Len() - 1; i >= 0; i-- {
			if t := r.promoteDate(r.rdates.At(i)); t.Before(prev) {
				candidates.Insert(t)
				break
			}
		}
		for _, rule := range r.rrules {
			if t, ok := rule.PreviousBefore(prev).Get(); ok {
				candidates.Insert(t)
			}
		}
		if candidates.Len() == 0 {
			return mo.None[time.Time]()
		}
		prev = candidates.Last()

		if r.excludes(prev) {
			continue
		}
		return mo.Some(prev)
	}
	return mo.None[time.Time]()
}

// excludes reports whether any exclusion source suppresses the
// candidate instant.
func (r *Recurrence) excludes(t time.Time) bool {
	if r.exdates.Contains(dateOf(t.In(r.location()))) || r.exdateTimes.Contains(t) {
		return true
	}
	for _, ex := range r.exrules {
		if ex.RecursAt(t) {
			return true
		}
	}
	return false
}

// promoteDate turns an explicit inclusion date into an instant on the
// anchor's time-of-day.
func (r *Recurrence) promoteDate(date time.Time) time.Time {
	loc := r.location()
	anchor := r.startForCompare().In(loc)
	y, m, d := date.Date()
	hh, mm, ss := anchor.Clock()
	return time.Date(y, m, d, hh, mm, ss, 0, loc)
}
