// Package recurrence computes the concrete occurrence instants of a
// repeating calendar item from a declarative combination of inclusion
// rules, exclusion rules and explicit date lists, following the RFC 5545
// model (RRULE/EXRULE/RDATE/EXDATE). Exclusions always take precedence
// over inclusions.
//
// A Recurrence is a single-threaded data structure: callers must
// serialize mutation and query themselves. It exclusively owns its rules
// and date lists; observers are held by reference only and must
// deregister before they go away.
package recurrence

import (
	"slices"
	"time"

	"github.com/cyp0633/librecur/internal/sortedlist"
)

// Observer is notified synchronously after every change to a
// Recurrence's effective occurrence set, including changes made through
// one of its owned rules. Observers are compared by identity, so the
// dynamic type behind the interface must be comparable.
type Observer interface {
	RecurrenceUpdated(r *Recurrence)
}

// Recurrence aggregates inclusion rules, exclusion rules and the four
// explicit date lists of one calendar item. Date values (RDATE/EXDATE
// with VALUE=DATE) are normalized to midnight UTC; date-time values keep
// their location.
type Recurrence struct {
	rrules  []*Rule
	exrules []*Rule

	rdates      sortedlist.List[time.Time]
	rdateTimes  sortedlist.List[time.Time]
	exdates     sortedlist.List[time.Time]
	exdateTimes sortedlist.List[time.Time]

	start    time.Time
	floating bool
	readOnly bool

	observers []Observer

	cachedType Type
	typeValid  bool
}

func compareTimes(a, b time.Time) int { return a.Compare(b) }

func newInstantList() sortedlist.List[time.Time] {
	return sortedlist.New(compareTimes)
}

// New returns an empty, non-recurring Recurrence.
func New() *Recurrence {
	return &Recurrence{
		rdates:      sortedlist.New(compareTimes),
		rdateTimes:  sortedlist.New(compareTimes),
		exdates:     sortedlist.New(compareTimes),
		exdateTimes: sortedlist.New(compareTimes),
	}
}

// Clone returns a deep copy. Owned rules are copied and observe the
// clone rather than the original; the observer list itself is not
// copied.
func (r *Recurrence) Clone() *Recurrence {
	c := &Recurrence{
		rdates:      r.rdates.Clone(),
		rdateTimes:  r.rdateTimes.Clone(),
		exdates:     r.exdates.Clone(),
		exdateTimes: r.exdateTimes.Clone(),
		start:       r.start,
		floating:    r.floating,
		readOnly:    r.readOnly,
		cachedType:  r.cachedType,
		typeValid:   r.typeValid,
	}
	for _, rule := range r.rrules {
		cr := rule.Clone()
		cr.addObserver(c)
		c.rrules = append(c.rrules, cr)
	}
	for _, rule := range r.exrules {
		cr := rule.Clone()
		cr.addObserver(c)
		c.exrules = append(c.exrules, cr)
	}
	return c
}

// Equal reports whether both recurrences describe the same occurrence
// set. Rule lists are compared positionally: reordering otherwise equal
// rules breaks equality.
func (r *Recurrence) Equal(other *Recurrence) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !r.start.Equal(other.start) ||
		r.floating != other.floating ||
		r.readOnly != other.readOnly ||
		!r.rdates.Equal(&other.rdates) ||
		!r.rdateTimes.Equal(&other.rdateTimes) ||
		!r.exdates.Equal(&other.exdates) ||
		!r.exdateTimes.Equal(&other.exdateTimes) {
		return false
	}
	if len(r.rrules) != len(other.rrules) || len(r.exrules) != len(other.exrules) {
		return false
	}
	for i := range r.rrules {
		if !r.rrules[i].Equal(other.rrules[i]) {
			return false
		}
	}
	for i := range r.exrules {
		if !r.exrules[i].Equal(other.exrules[i]) {
			return false
		}
	}
	return true
}

// AddObserver registers o for change notification. Registering the same
// observer twice has no effect.
func (r *Recurrence) AddObserver(o Observer) {
	if !slices.Contains(r.observers, o) {
		r.observers = append(r.observers, o)
	}
}

// RemoveObserver deregisters o by identity.
func (r *Recurrence) RemoveObserver(o Observer) {
	r.observers = slices.DeleteFunc(r.observers, func(x Observer) bool {
		return x == o
	})
}

// updated invalidates the cached recurrence type and notifies every
// observer. Every mutator that changes occurrence semantics ends here.
func (r *Recurrence) updated() {
	r.typeValid = false
	for _, o := range r.observers {
		o.RecurrenceUpdated(r)
	}
}

// ruleChanged forwards change notification from an owned rule.
func (r *Recurrence) ruleChanged(*Rule) {
	r.updated()
}

// Start returns the anchor instant the recurrence is computed from.
func (r *Recurrence) Start() time.Time {
	return r.start
}

// StartDate returns the anchor's calendar date as a midnight-UTC value.
func (r *Recurrence) StartDate() time.Time {
	return dateOf(r.start.In(r.location()))
}

// SetStartDateTime sets a timed anchor, clears the floating flag and
// pushes both to every owned rule.
func (r *Recurrence) SetStartDateTime(start time.Time) {
	if r.readOnly {
		return
	}
	r.start = start
	r.setFloating(false)
	for _, rule := range r.rrules {
		rule.SetAnchor(start)
	}
	for _, rule := range r.exrules {
		rule.SetAnchor(start)
	}
	r.updated()
}

// SetStartDate sets a date-only anchor, making the whole recurrence
// floating.
func (r *Recurrence) SetStartDate(date time.Time) {
	if r.readOnly {
		return
	}
	r.start = dateOf(date)
	r.setFloating(true)
	for _, rule := range r.rrules {
		rule.SetAnchor(r.start)
	}
	for _, rule := range r.exrules {
		rule.SetAnchor(r.start)
	}
	r.updated()
}

// Floating reports whether the recurrence is date-only, without a
// meaningful time-of-day.
func (r *Recurrence) Floating() bool {
	return r.floating
}

// SetFloating toggles date-only semantics, propagating the flag to every
// owned rule so rule-level and aggregate-level state never diverge.
func (r *Recurrence) SetFloating(floating bool) {
	if r.readOnly || floating == r.floating {
		return
	}
	r.setFloating(floating)
	r.updated()
}

func (r *Recurrence) setFloating(floating bool) {
	r.floating = floating
	for _, rule := range r.rrules {
		rule.SetFloating(floating)
	}
	for _, rule := range r.exrules {
		rule.SetFloating(floating)
	}
}

// ReadOnly reports whether mutation is disabled.
func (r *Recurrence) ReadOnly() bool {
	return r.readOnly
}

// SetReadOnly toggles the read-only flag. While set, every mutator is a
// silent no-op.
func (r *Recurrence) SetReadOnly(readOnly bool) {
	r.readOnly = readOnly
}

// Clear resets the recurrence to its empty, non-recurring state.
func (r *Recurrence) Clear() {
	if r.readOnly {
		return
	}
	for _, rule := range r.rrules {
		rule.removeObserver(r)
	}
	for _, rule := range r.exrules {
		rule.removeObserver(r)
	}
	r.rrules = nil
	r.exrules = nil
	r.rdates.Clear()
	r.rdateTimes.Clear()
	r.exdates.Clear()
	r.exdateTimes.Clear()
	r.updated()
}

// UnsetRecurs drops all inclusion rules, keeping explicit dates and
// exclusions.
func (r *Recurrence) UnsetRecurs() {
	if r.readOnly {
		return
	}
	for _, rule := range r.rrules {
		rule.removeObserver(r)
	}
	r.rrules = nil
	r.updated()
}

// RRules returns the inclusion rules in insertion order. The slice is a
// copy but the rules are the owned instances.
func (r *Recurrence) RRules() []*Rule {
	return slices.Clone(r.rrules)
}

// AddRRule appends an inclusion rule, taking ownership of it.
func (r *Recurrence) AddRRule(rule *Rule) {
	if r.readOnly || rule == nil {
		return
	}
	rule.SetFloating(r.floating)
	r.rrules = append(r.rrules, rule)
	rule.addObserver(r)
	r.updated()
}

// RemoveRRule removes an inclusion rule by identity.
func (r *Recurrence) RemoveRRule(rule *Rule) {
	if r.readOnly || rule == nil {
		return
	}
	r.rrules = slices.DeleteFunc(r.rrules, func(x *Rule) bool { return x == rule })
	rule.removeObserver(r)
	r.updated()
}

// ExRules returns the exclusion rules in insertion order.
func (r *Recurrence) ExRules() []*Rule {
	return slices.Clone(r.exrules)
}

// AddExRule appends an exclusion rule, taking ownership of it.
func (r *Recurrence) AddExRule(rule *Rule) {
	if r.readOnly || rule == nil {
		return
	}
	rule.SetFloating(r.floating)
	r.exrules = append(r.exrules, rule)
	rule.addObserver(r)
	r.updated()
}

// RemoveExRule removes an exclusion rule by identity.
func (r *Recurrence) RemoveExRule(rule *Rule) {
	if r.readOnly || rule == nil {
		return
	}
	r.exrules = slices.DeleteFunc(r.exrules, func(x *Rule) bool { return x == rule })
	rule.removeObserver(r)
	r.updated()
}

// RDates returns the explicit inclusion dates as midnight-UTC values.
func (r *Recurrence) RDates() []time.Time {
	return r.rdates.Values()
}

// SetRDates replaces the explicit inclusion dates, normalizing them to
// a sorted, duplicate-free list of date values.
func (r *Recurrence) SetRDates(dates []time.Time) {
	if r.readOnly {
		return
	}
	r.rdates.Replace(datesOf(dates))
	r.updated()
}

// AddRDate inserts one explicit inclusion date.
func (r *Recurrence) AddRDate(date time.Time) {
	if r.readOnly {
		return
	}
	r.rdates.Insert(dateOf(date))
	r.updated()
}

// RDateTimes returns the explicit inclusion instants.
func (r *Recurrence) RDateTimes() []time.Time {
	return r.rdateTimes.Values()
}

// SetRDateTimes replaces the explicit inclusion instants.
func (r *Recurrence) SetRDateTimes(instants []time.Time) {
	if r.readOnly {
		return
	}
	r.rdateTimes.Replace(instants)
	r.updated()
}

// AddRDateTime inserts one explicit inclusion instant.
func (r *Recurrence) AddRDateTime(t time.Time) {
	if r.readOnly {
		return
	}
	r.rdateTimes.Insert(t)
	r.updated()
}

// ExDates returns the explicit exclusion dates as midnight-UTC values.
func (r *Recurrence) ExDates() []time.Time {
	return r.exdates.Values()
}

// SetExDates replaces the explicit exclusion dates.
func (r *Recurrence) SetExDates(dates []time.Time) {
	if r.readOnly {
		return
	}
	r.exdates.Replace(datesOf(dates))
	r.updated()
}

// AddExDate inserts one explicit exclusion date.
func (r *Recurrence) AddExDate(date time.Time) {
	if r.readOnly {
		return
	}
	r.exdates.Insert(dateOf(date))
	r.updated()
}

// ExDateTimes returns the explicit exclusion instants.
func (r *Recurrence) ExDateTimes() []time.Time {
	return r.exdateTimes.Values()
}

// SetExDateTimes replaces the explicit exclusion instants.
func (r *Recurrence) SetExDateTimes(instants []time.Time) {
	if r.readOnly {
		return
	}
	r.exdateTimes.Replace(instants)
	r.updated()
}

// AddExDateTime inserts one explicit exclusion instant.
func (r *Recurrence) AddExDateTime(t time.Time) {
	if r.readOnly {
		return
	}
	r.exdateTimes.Insert(t)
	r.updated()
}

// defaultRule is the first inclusion rule, the one the legacy accessors
// operate on. With create set, an empty list grows a fresh open-ended
// rule anchored at the recurrence's start.
func (r *Recurrence) defaultRule(create bool) *Rule {
	if len(r.rrules) > 0 {
		return r.rrules[0]
	}
	if !create || r.readOnly {
		return nil
	}
	rule := NewRule()
	rule.SetAnchor(r.start)
	r.AddRRule(rule)
	return rule
}

// location is the recurrence's own time reference: the anchor's zone,
// or UTC for floating recurrences.
func (r *Recurrence) location() *time.Location {
	if r.floating {
		return time.UTC
	}
	return r.start.Location()
}

// startForCompare is the anchor as used in instant comparisons: the bare
// date for floating recurrences, the full instant otherwise.
func (r *Recurrence) startForCompare() time.Time {
	if r.floating {
		return dateOf(r.start)
	}
	return r.start
}

// dateOf strips t down to its calendar date, represented as midnight
// UTC. Date values compared with time.Time.Compare then order by
// calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datesOf(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		out[i] = dateOf(t)
	}
	return out
}

// dayBounds returns the first and last instant of date's calendar day in
// loc.
func dayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// shiftZone reinterprets t's wall-clock reading in oldLoc as a reading
// in newLoc.
func shiftZone(t time.Time, oldLoc, newLoc *time.Location) time.Time {
	w := t.In(oldLoc)
	y, m, d := w.Date()
	hh, mm, ss := w.Clock()
	return time.Date(y, m, d, hh, mm, ss, w.Nanosecond(), newLoc)
}
