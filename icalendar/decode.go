// Package icalendar converts between go-ical components and the
// recurrence package: DTSTART, RRULE, EXRULE, RDATE and EXDATE
// properties on one side, a recurrence.Recurrence built through its
// public mutators on the other. The recurrence core itself defines no
// wire format; this package is the encoder/decoder sitting next to it.
package icalendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/recurrence"
)

const propExceptionRule = "EXRULE"

var periodsByFrequency = map[rrule.Frequency]recurrence.Period{
	rrule.SECONDLY: recurrence.PeriodSecondly,
	rrule.MINUTELY: recurrence.PeriodMinutely,
	rrule.HOURLY:   recurrence.PeriodHourly,
	rrule.DAILY:    recurrence.PeriodDaily,
	rrule.WEEKLY:   recurrence.PeriodWeekly,
	rrule.MONTHLY:  recurrence.PeriodMonthly,
	rrule.YEARLY:   recurrence.PeriodYearly,
}

// Decode builds a Recurrence from a component's recurrence properties.
// loc is the location date-time values without zone information are
// interpreted in; nil means UTC.
func Decode(comp *ical.Component, loc *time.Location) (*recurrence.Recurrence, error) {
	if loc == nil {
		loc = time.UTC
	}
	rec := recurrence.New()

	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil && prop.Value != "" {
		start, dateOnly, err := parseDateTime(prop.Value, prop.Params, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DTSTART %q: %w", prop.Value, err)
		}
		if dateOnly {
			rec.SetStartDate(start)
		} else {
			rec.SetStartDateTime(start)
		}
	}

	for _, prop := range comp.Props.Values(ical.PropRecurrenceRule) {
		rule, err := decodeRule(prop.Value, rec.Start(), loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RRULE %q: %w", prop.Value, err)
		}
		rec.AddRRule(rule)
	}
	for _, prop := range comp.Props.Values(propExceptionRule) {
		rule, err := decodeRule(prop.Value, rec.Start(), loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EXRULE %q: %w", prop.Value, err)
		}
		rec.AddExRule(rule)
	}

	for _, prop := range comp.Props.Values(ical.PropRecurrenceDates) {
		if err := decodeDates(rec.AddRDate, rec.AddRDateTime, prop, loc); err != nil {
			return nil, fmt.Errorf("failed to parse RDATE %q: %w", prop.Value, err)
		}
	}
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		if err := decodeDates(rec.AddExDate, rec.AddExDateTime, prop, loc); err != nil {
			return nil, fmt.Errorf("failed to parse EXDATE %q: %w", prop.Value, err)
		}
	}

	return rec, nil
}

// decodeRule maps one RRULE/EXRULE body onto a recurrence.Rule.
func decodeRule(value string, anchor time.Time, loc *time.Location) (*recurrence.Rule, error) {
	opt, err := rrule.StrToROptionInLocation(value, loc)
	if err != nil {
		return nil, err
	}

	rule := recurrence.NewRule()
	rule.SetAnchor(anchor)

	period, ok := periodsByFrequency[opt.Freq]
	if !ok {
		return nil, fmt.Errorf("unsupported frequency %v", opt.Freq)
	}
	rule.SetPeriod(period)
	if opt.Interval > 0 {
		rule.SetFrequency(opt.Interval)
	}
	switch {
	case opt.Count > 0:
		rule.SetDuration(opt.Count)
	case !opt.Until.IsZero():
		rule.SetUntil(opt.Until)
	default:
		rule.SetDuration(-1)
	}
	rule.SetWeekStart(opt.Wkst.Day() + 1)

	if len(opt.Byweekday) > 0 {
		days := make([]recurrence.WeekdayPos, len(opt.Byweekday))
		for i, wd := range opt.Byweekday {
			days[i] = recurrence.WeekdayPos{Day: wd.Day() + 1, Pos: wd.N()}
		}
		rule.SetByDays(days)
	}
	rule.SetBySeconds(opt.Bysecond)
	rule.SetByMinutes(opt.Byminute)
	rule.SetByHours(opt.Byhour)
	rule.SetByMonthDays(opt.Bymonthday)
	rule.SetByYearDays(opt.Byyearday)
	rule.SetByWeekNumbers(opt.Byweekno)
	rule.SetByMonths(opt.Bymonth)
	rule.SetBySetPos(opt.Bysetpos)

	return rule, nil
}

// decodeDates feeds one RDATE/EXDATE property's comma-separated values
// into the date or date-time mutator, depending on the VALUE parameter.
func decodeDates(addDate, addDateTime func(time.Time), prop ical.Prop, loc *time.Location) error {
	for _, raw := range strings.Split(prop.Value, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, dateOnly, err := parseDateTime(raw, prop.Params, loc)
		if err != nil {
			return err
		}
		if dateOnly {
			addDate(t)
		} else {
			addDateTime(t)
		}
	}
	return nil
}

// parseDateTime parses an iCalendar DATE or DATE-TIME value, reporting
// whether it was date-only.
func parseDateTime(value string, params ical.Params, loc *time.Location) (time.Time, bool, error) {
	if isDateValue(params) {
		t, err := time.Parse("20060102", value)
		return t, true, err
	}
	if t, err := time.Parse("20060102T150405Z", value); err == nil {
		return t, false, nil
	}
	if t, err := time.ParseInLocation("20060102T150405", value, loc); err == nil {
		return t, false, nil
	}
	// Fall back to date parsing for properties that omit VALUE=DATE.
	t, err := time.Parse("20060102", value)
	return t, true, err
}

func isDateValue(params ical.Params) bool {
	if params == nil {
		return false
	}
	values := params["VALUE"]
	return len(values) > 0 && strings.EqualFold(values[0], "DATE")
}
