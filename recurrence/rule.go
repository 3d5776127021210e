package recurrence

import (
	"slices"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// Period is the base cadence of a rule (the RRULE FREQ part).
type Period int

const (
	PeriodNone Period = iota
	PeriodSecondly
	PeriodMinutely
	PeriodHourly
	PeriodDaily
	PeriodWeekly
	PeriodMonthly
	PeriodYearly
)

// WeekdayPos pairs a weekday (1 = Monday .. 7 = Sunday) with an ordinal
// position within the rule's period, e.g. {5, -1} is the last Friday.
// Position 0 means every matching weekday.
type WeekdayPos struct {
	Day int
	Pos int
}

var rruleFrequencies = map[Period]rrule.Frequency{
	PeriodSecondly: rrule.SECONDLY,
	PeriodMinutely: rrule.MINUTELY,
	PeriodHourly:   rrule.HOURLY,
	PeriodDaily:    rrule.DAILY,
	PeriodWeekly:   rrule.WEEKLY,
	PeriodMonthly:  rrule.MONTHLY,
	PeriodYearly:   rrule.YEARLY,
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// ruleObserver receives a notification whenever a rule's occurrence set
// changes. The owning Recurrence registers itself here.
type ruleObserver interface {
	ruleChanged(r *Rule)
}

// Rule describes a single repeating pattern, either an inclusion rule
// (RRULE) or an exclusion rule (EXRULE); which of the two it is depends
// solely on the list it sits in. The declarative fields are kept as
// plain values so classification and the legacy accessors can read them;
// the occurrence math is delegated to a lazily compiled rrule.RRule.
type Rule struct {
	period    Period
	frequency int
	anchor    time.Time
	floating  bool
	count     int // -1 open-ended, 0 bounded by until, >0 occurrence count
	until     time.Time
	weekStart int

	bySeconds     []int
	byMinutes     []int
	byHours       []int
	byDays        []WeekdayPos
	byMonthDays   []int
	byYearDays    []int
	byWeekNumbers []int
	byMonths      []int
	bySetPos      []int

	observers []ruleObserver
	compiled  *rrule.RRule
	stale     bool
}

// NewRule returns an open-ended rule with no cadence, frequency 1 and
// weeks starting on Monday.
func NewRule() *Rule {
	return &Rule{
		frequency: 1,
		count:     -1,
		weekStart: 1,
		stale:     true,
	}
}

func (r *Rule) addObserver(o ruleObserver) {
	if !slices.Contains(r.observers, o) {
		r.observers = append(r.observers, o)
	}
}

func (r *Rule) removeObserver(o ruleObserver) {
	r.observers = slices.DeleteFunc(r.observers, func(x ruleObserver) bool {
		return x == o
	})
}

func (r *Rule) changed() {
	r.stale = true
	for _, o := range r.observers {
		o.ruleChanged(r)
	}
}

// Clone returns a deep copy of the rule with no observers registered.
func (r *Rule) Clone() *Rule {
	c := *r
	c.bySeconds = slices.Clone(r.bySeconds)
	c.byMinutes = slices.Clone(r.byMinutes)
	c.byHours = slices.Clone(r.byHours)
	c.byDays = slices.Clone(r.byDays)
	c.byMonthDays = slices.Clone(r.byMonthDays)
	c.byYearDays = slices.Clone(r.byYearDays)
	c.byWeekNumbers = slices.Clone(r.byWeekNumbers)
	c.byMonths = slices.Clone(r.byMonths)
	c.bySetPos = slices.Clone(r.bySetPos)
	c.observers = nil
	c.compiled = nil
	c.stale = true
	return &c
}

// Equal reports whether both rules describe the same pattern.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.period == other.period &&
		r.frequency == other.frequency &&
		r.anchor.Equal(other.anchor) &&
		r.floating == other.floating &&
		r.count == other.count &&
		r.until.Equal(other.until) &&
		r.weekStart == other.weekStart &&
		slices.Equal(r.bySeconds, other.bySeconds) &&
		slices.Equal(r.byMinutes, other.byMinutes) &&
		slices.Equal(r.byHours, other.byHours) &&
		slices.Equal(r.byDays, other.byDays) &&
		slices.Equal(r.byMonthDays, other.byMonthDays) &&
		slices.Equal(r.byYearDays, other.byYearDays) &&
		slices.Equal(r.byWeekNumbers, other.byWeekNumbers) &&
		slices.Equal(r.byMonths, other.byMonths) &&
		slices.Equal(r.bySetPos, other.bySetPos)
}

// Field accessors. Getters return copies so the rule keeps exclusive
// ownership of its state.

func (r *Rule) Period() Period    { return r.period }
func (r *Rule) Frequency() int    { return r.frequency }
func (r *Rule) Anchor() time.Time { return r.anchor }
func (r *Rule) Floating() bool    { return r.floating }
func (r *Rule) Duration() int     { return r.count }
func (r *Rule) Until() time.Time  { return r.until }
func (r *Rule) WeekStart() int    { return r.weekStart }

func (r *Rule) BySeconds() []int     { return slices.Clone(r.bySeconds) }
func (r *Rule) ByMinutes() []int     { return slices.Clone(r.byMinutes) }
func (r *Rule) ByHours() []int       { return slices.Clone(r.byHours) }
func (r *Rule) ByDays() []WeekdayPos { return slices.Clone(r.byDays) }
func (r *Rule) ByMonthDays() []int   { return slices.Clone(r.byMonthDays) }
func (r *Rule) ByYearDays() []int    { return slices.Clone(r.byYearDays) }
func (r *Rule) ByWeekNumbers() []int { return slices.Clone(r.byWeekNumbers) }
func (r *Rule) ByMonths() []int      { return slices.Clone(r.byMonths) }
func (r *Rule) BySetPos() []int      { return slices.Clone(r.bySetPos) }

func (r *Rule) SetPeriod(p Period) {
	r.period = p
	r.changed()
}

func (r *Rule) SetFrequency(freq int) {
	r.frequency = freq
	r.changed()
}

// SetAnchor sets the instant relative rules are computed from.
func (r *Rule) SetAnchor(t time.Time) {
	r.anchor = t
	r.changed()
}

// SetFloating marks the rule as date-only. A floating rule produces one
// occurrence slot per matching day, at midnight UTC.
func (r *Rule) SetFloating(floating bool) {
	if r.floating == floating {
		return
	}
	r.floating = floating
	r.changed()
}

// SetDuration sets the occurrence count: -1 keeps the rule open-ended,
// 0 bounds it by the until instant, a positive value caps the number of
// occurrences.
func (r *Rule) SetDuration(count int) {
	r.count = count
	r.changed()
}

// SetUntil bounds the rule by an end instant, clearing any count.
func (r *Rule) SetUntil(t time.Time) {
	r.until = t
	r.count = 0
	r.changed()
}

func (r *Rule) SetWeekStart(day int) {
	r.weekStart = day
	r.changed()
}

func (r *Rule) SetBySeconds(v []int)     { r.bySeconds = slices.Clone(v); r.changed() }
func (r *Rule) SetByMinutes(v []int)     { r.byMinutes = slices.Clone(v); r.changed() }
func (r *Rule) SetByHours(v []int)       { r.byHours = slices.Clone(v); r.changed() }
func (r *Rule) SetByDays(v []WeekdayPos) { r.byDays = slices.Clone(v); r.changed() }
func (r *Rule) SetByMonthDays(v []int)   { r.byMonthDays = slices.Clone(v); r.changed() }
func (r *Rule) SetByYearDays(v []int)    { r.byYearDays = slices.Clone(v); r.changed() }
func (r *Rule) SetByWeekNumbers(v []int) { r.byWeekNumbers = slices.Clone(v); r.changed() }
func (r *Rule) SetByMonths(v []int)      { r.byMonths = slices.Clone(v); r.changed() }
func (r *Rule) SetBySetPos(v []int)      { r.bySetPos = slices.Clone(v); r.changed() }

// ShiftTimes reinterprets the rule's instants from one zone to another,
// preserving wall-clock values.
func (r *Rule) ShiftTimes(oldLoc, newLoc *time.Location) {
	r.anchor = shiftZone(r.anchor, oldLoc, newLoc)
	if !r.until.IsZero() {
		r.until = shiftZone(r.until, oldLoc, newLoc)
	}
	r.changed()
}

// compileAnchor is the DTSTART handed to rrule-go: floating rules anchor
// at midnight UTC of the anchor's date.
func (r *Rule) compileAnchor() time.Time {
	if r.floating {
		return dateOf(r.anchor)
	}
	return r.anchor
}

// zone is the location date windows are computed in. Floating rules
// always work in UTC; otherwise the caller's location wins, falling back
// to the anchor's.
func (r *Rule) zone(loc *time.Location) *time.Location {
	if r.floating {
		return time.UTC
	}
	if loc != nil {
		return loc
	}
	return r.anchor.Location()
}

// rrule compiles the declarative fields into an rrule.RRule, reusing the
// previous compilation until a field changes. A rule with no cadence, or
// whose fields do not compile, yields nil and produces no occurrences.
func (r *Rule) rrule() *rrule.RRule {
	if !r.stale {
		return r.compiled
	}
	r.stale = false
	r.compiled = nil

	freq, ok := rruleFrequencies[r.period]
	if !ok {
		return nil
	}
	opt := rrule.ROption{
		Freq:       freq,
		Interval:   r.frequency,
		Dtstart:    r.compileAnchor(),
		Bysetpos:   r.bySetPos,
		Bymonth:    r.byMonths,
		Bymonthday: r.byMonthDays,
		Byyearday:  r.byYearDays,
		Byweekno:   r.byWeekNumbers,
		Byhour:     r.byHours,
		Byminute:   r.byMinutes,
		Bysecond:   r.bySeconds,
	}
	if r.weekStart >= 1 && r.weekStart <= 7 {
		opt.Wkst = rruleWeekdays[r.weekStart-1]
	}
	for _, p := range r.byDays {
		if p.Day < 1 || p.Day > 7 {
			return nil
		}
		wd := rruleWeekdays[p.Day-1]
		if p.Pos != 0 {
			wd = wd.Nth(p.Pos)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	if r.count > 0 {
		opt.Count = r.count
	} else if r.count == 0 && !r.until.IsZero() {
		opt.Until = r.until
	}

	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil
	}
	r.compiled = rr
	return rr
}

// Recurs reports whether the rule has a cadence at all.
func (r *Rule) Recurs() bool {
	return r.period != PeriodNone
}

// String returns the rule's RRULE text, or the empty string for a rule
// that does not compile.
func (r *Rule) String() string {
	rr := r.rrule()
	if rr == nil {
		return ""
	}
	return rr.String()
}

// RecursOn reports whether the rule produces at least one occurrence on
// the calendar date of date, evaluated in loc.
func (r *Rule) RecursOn(date time.Time, loc *time.Location) bool {
	rr := r.rrule()
	if rr == nil {
		return false
	}
	dayStart, dayEnd := dayBounds(date, r.zone(loc))
	next := rr.After(dayStart, true)
	return !next.IsZero() && !next.After(dayEnd)
}

// RecursAt reports whether the rule produces an occurrence exactly at t.
func (r *Rule) RecursAt(t time.Time) bool {
	rr := r.rrule()
	if rr == nil {
		return false
	}
	if r.floating {
		t = dateOf(t)
	}
	next := rr.After(t, true)
	return !next.IsZero() && next.Equal(t)
}

// TimesOn returns every occurrence instant on the calendar date of date,
// evaluated in loc, in ascending order.
func (r *Rule) TimesOn(date time.Time, loc *time.Location) []time.Time {
	rr := r.rrule()
	if rr == nil {
		return nil
	}
	dayStart, dayEnd := dayBounds(date, r.zone(loc))
	return rr.Between(dayStart, dayEnd, true)
}

// Between returns the rule's occurrences within [start, end], inclusive.
func (r *Rule) Between(start, end time.Time) []time.Time {
	rr := r.rrule()
	if rr == nil {
		return nil
	}
	return rr.Between(start, end, true)
}

// NextAfter returns the first occurrence strictly after t.
func (r *Rule) NextAfter(t time.Time) mo.Option[time.Time] {
	rr := r.rrule()
	if rr == nil {
		return mo.None[time.Time]()
	}
	next := rr.After(t, false)
	if next.IsZero() {
		return mo.None[time.Time]()
	}
	return mo.Some(next)
}

// PreviousBefore returns the last occurrence strictly before t.
func (r *Rule) PreviousBefore(t time.Time) mo.Option[time.Time] {
	rr := r.rrule()
	if rr == nil {
		return mo.None[time.Time]()
	}
	prev := rr.Before(t, false)
	if prev.IsZero() {
		return mo.None[time.Time]()
	}
	return mo.Some(prev)
}

// EndAt returns the rule's own last instant. An open-ended rule has none.
func (r *Rule) EndAt() mo.Option[time.Time] {
	switch {
	case r.count < 0:
		return mo.None[time.Time]()
	case r.count == 0:
		if r.until.IsZero() {
			return mo.None[time.Time]()
		}
		return mo.Some(r.until)
	default:
		rr := r.rrule()
		if rr == nil {
			return mo.None[time.Time]()
		}
		all := rr.All()
		if len(all) == 0 {
			return mo.None[time.Time]()
		}
		return mo.Some(all[len(all)-1])
	}
}

// DurationTo counts the occurrences from the rule's anchor up to and
// including t.
func (r *Rule) DurationTo(t time.Time) int {
	rr := r.rrule()
	if rr == nil {
		return 0
	}
	return len(rr.Between(r.compileAnchor(), t, true))
}
