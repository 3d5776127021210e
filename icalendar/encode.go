package icalendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/librecur/recurrence"
)

const (
	dateFormat     = "20060102"
	dateTimeFormat = "20060102T150405Z"
)

var frequencyNames = map[recurrence.Period]string{
	recurrence.PeriodSecondly: "SECONDLY",
	recurrence.PeriodMinutely: "MINUTELY",
	recurrence.PeriodHourly:   "HOURLY",
	recurrence.PeriodDaily:    "DAILY",
	recurrence.PeriodWeekly:   "WEEKLY",
	recurrence.PeriodMonthly:  "MONTHLY",
	recurrence.PeriodYearly:   "YEARLY",
}

var weekdayNames = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Encode writes rec's recurrence properties onto comp, replacing any it
// already carries. Rules that do not map onto a FREQ value are skipped.
func Encode(rec *recurrence.Recurrence, comp *ical.Component) {
	for _, name := range []string{
		ical.PropDateTimeStart,
		ical.PropRecurrenceRule,
		propExceptionRule,
		ical.PropRecurrenceDates,
		ical.PropExceptionDates,
	} {
		delete(comp.Props, name)
	}

	if start := rec.Start(); !start.IsZero() {
		if rec.Floating() {
			addProp(comp, ical.PropDateTimeStart, start.Format(dateFormat), true)
		} else {
			addProp(comp, ical.PropDateTimeStart, start.UTC().Format(dateTimeFormat), false)
		}
	}

	for _, rule := range rec.RRules() {
		if text := encodeRule(rule); text != "" {
			addProp(comp, ical.PropRecurrenceRule, text, false)
		}
	}
	for _, rule := range rec.ExRules() {
		if text := encodeRule(rule); text != "" {
			addProp(comp, propExceptionRule, text, false)
		}
	}

	encodeDates(comp, ical.PropRecurrenceDates, rec.RDates(), rec.RDateTimes())
	encodeDates(comp, ical.PropExceptionDates, rec.ExDates(), rec.ExDateTimes())
}

// NewEvent builds a fresh VEVENT component carrying rec's recurrence
// properties and a generated UID.
func NewEvent(rec *recurrence.Recurrence) *ical.Component {
	comp := &ical.Component{
		Name:  ical.CompEvent,
		Props: make(ical.Props),
	}
	addProp(comp, ical.PropUID, uuid.NewString(), false)
	addProp(comp, ical.PropDateTimeStamp, time.Now().UTC().Format(dateTimeFormat), false)
	Encode(rec, comp)
	return comp
}

// encodeRule renders one rule as RRULE text, reading only the rule's
// public accessors.
func encodeRule(rule *recurrence.Rule) string {
	freq, ok := frequencyNames[rule.Period()]
	if !ok {
		return ""
	}
	parts := []string{"FREQ=" + freq}
	if f := rule.Frequency(); f > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(f))
	}
	switch count := rule.Duration(); {
	case count > 0:
		parts = append(parts, "COUNT="+strconv.Itoa(count))
	case count == 0:
		if until := rule.Until(); !until.IsZero() {
			parts = append(parts, "UNTIL="+until.UTC().Format(dateTimeFormat))
		}
	}
	if ws := rule.WeekStart(); ws >= 1 && ws <= 7 && ws != 1 {
		parts = append(parts, "WKST="+weekdayNames[ws-1])
	}
	if days := rule.ByDays(); len(days) > 0 {
		names := make([]string, len(days))
		for i, p := range days {
			if p.Day < 1 || p.Day > 7 {
				return ""
			}
			if p.Pos != 0 {
				names[i] = fmt.Sprintf("%d%s", p.Pos, weekdayNames[p.Day-1])
			} else {
				names[i] = weekdayNames[p.Day-1]
			}
		}
		parts = append(parts, "BYDAY="+strings.Join(names, ","))
	}
	parts = appendIntList(parts, "BYMONTHDAY", rule.ByMonthDays())
	parts = appendIntList(parts, "BYYEARDAY", rule.ByYearDays())
	parts = appendIntList(parts, "BYWEEKNO", rule.ByWeekNumbers())
	parts = appendIntList(parts, "BYMONTH", rule.ByMonths())
	parts = appendIntList(parts, "BYHOUR", rule.ByHours())
	parts = appendIntList(parts, "BYMINUTE", rule.ByMinutes())
	parts = appendIntList(parts, "BYSECOND", rule.BySeconds())
	parts = appendIntList(parts, "BYSETPOS", rule.BySetPos())
	return strings.Join(parts, ";")
}

func appendIntList(parts []string, key string, values []int) []string {
	if len(values) == 0 {
		return parts
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.Itoa(v)
	}
	return append(parts, key+"="+strings.Join(strs, ","))
}

// encodeDates emits up to two properties under name: one DATE-TIME list
// and one VALUE=DATE list, as RFC 5545 forbids mixing the two in a
// single property.
func encodeDates(comp *ical.Component, name string, dates, dateTimes []time.Time) {
	if len(dateTimes) > 0 {
		values := make([]string, len(dateTimes))
		for i, t := range dateTimes {
			values[i] = t.UTC().Format(dateTimeFormat)
		}
		addProp(comp, name, strings.Join(values, ","), false)
	}
	if len(dates) > 0 {
		values := make([]string, len(dates))
		for i, t := range dates {
			values[i] = t.Format(dateFormat)
		}
		addProp(comp, name, strings.Join(values, ","), true)
	}
}

func addProp(comp *ical.Component, name, value string, dateValue bool) {
	prop := ical.Prop{
		Name:   name,
		Params: make(ical.Params),
		Value:  value,
	}
	if dateValue {
		prop.Params["VALUE"] = []string{"DATE"}
	}
	comp.Props[name] = append(comp.Props[name], prop)
}
