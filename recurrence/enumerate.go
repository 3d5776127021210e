package recurrence

import "time"

// TimesOnDate returns every occurrence instant on the calendar date of
// date in the recurrence's own time reference, sorted and
// duplicate-free, after subtracting every exclusion source. An empty
// result for a day some inclusion source matches means the day is fully
// excluded.
func (r *Recurrence) TimesOnDate(date time.Time) []time.Time {
	loc := r.location()
	d := dateOf(date)

	if r.exdates.Contains(d) {
		return nil
	}
	// Exclusion rules take precedence over explicit inclusion dates, so
	// for floating recurrences a matching exclusion rule empties the
	// whole day before anything is collected.
	if r.floating {
		for _, ex := range r.exrules {
			if ex.RecursOn(d, loc) {
				return nil
			}
		}
	}

	times := newInstantList()
	if start := r.startForCompare().In(loc); dateOf(start).Equal(d) {
		times.Append(start)
	}
	// The instant list is sorted, so once past the target date nothing
	// later can match it.
	seen := false
	for i := 0; i < r.rdateTimes.Len(); i++ {
		dt := r.rdateTimes.At(i).In(loc)
		if dateOf(dt).Equal(d) {
			times.Append(dt)
			seen = true
		} else if seen {
			break
		}
	}
	for _, rule := range r.rrules {
		for _, t := range rule.TimesOn(d, loc) {
			times.Append(t)
		}
	}
	times.SortUnique()

	extimes := newInstantList()
	seen = false
	for i := 0; i < r.exdateTimes.Len(); i++ {
		dt := r.exdateTimes.At(i).In(loc)
		if dateOf(dt).Equal(d) {
			extimes.Append(dt)
			seen = true
		} else if seen {
			break
		}
	}
	if !r.floating { // floating exclusion rules already emptied the day
		for _, ex := range r.exrules {
			for _, t := range ex.TimesOn(d, loc) {
				extimes.Append(t)
			}
		}
	}
	extimes.SortUnique()

	times.RemoveAll(extimes.Values(), 0)
	return times.Values()
}

// OccurrencesBetween returns every occurrence instant within
// [start, end], inclusive, sorted and duplicate-free: the union of all
// inclusion sources minus every exclusion source.
func (r *Recurrence) OccurrencesBetween(start, end time.Time) []time.Time {
	loc := r.location()

	times := newInstantList()
	for _, rule := range r.rrules {
		for _, t := range rule.Between(start, end) {
			times.Append(t)
		}
	}
	for i := 0; i < r.rdateTimes.Len(); i++ {
		times.Append(r.rdateTimes.At(i))
	}
	// Explicit dates are promoted to instants on the anchor's
	// time-of-day.
	anchor := r.startForCompare().In(loc)
	for i := 0; i < r.rdates.Len(); i++ {
		y, m, d := r.rdates.At(i).Date()
		hh, mm, ss := anchor.Clock()
		times.Append(time.Date(y, m, d, hh, mm, ss, 0, loc))
	}
	times.SortUnique()

	// Remove whole excluded dates first, sweeping both sorted
	// sequences in lock-step.
	if r.exdates.Len() > 0 {
		kept := newInstantList()
		j := 0
		for i := 0; i < times.Len(); i++ {
			t := times.At(i)
			d := dateOf(t.In(loc))
			for j < r.exdates.Len() && r.exdates.At(j).Before(d) {
				j++
			}
			if j < r.exdates.Len() && r.exdates.At(j).Equal(d) {
				continue
			}
			kept.Append(t)
		}
		times = kept
	}

	extimes := newInstantList()
	for _, ex := range r.exrules {
		for _, t := range ex.Between(start, end) {
			extimes.Append(t)
		}
	}
	for i := 0; i < r.exdateTimes.Len(); i++ {
		extimes.Append(r.exdateTimes.At(i))
	}
	extimes.SortUnique()
	times.RemoveAll(extimes.Values(), 0)

	// Explicit instants were unioned in unconditionally; trim the
	// result to the requested interval.
	var out []time.Time
	for i := 0; i < times.Len(); i++ {
		t := times.At(i)
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}
