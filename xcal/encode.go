// Package xcal renders a recurrence's properties in the xCal XML format
// of RFC 6321. Only encoding is provided; parsing xCal back into a
// recurrence is the format layer's concern, as with the iCalendar text
// form.
package xcal

import (
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/cyp0633/librecur/recurrence"
)

// Namespace is the xCal XML namespace.
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02T15:04:05Z"
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

// Document wraps rec's encoded properties in a standalone xCal document.
func Document(rec *recurrence.Recurrence) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", Namespace)
	root.AddChild(EncodeProperties(rec))
	return doc
}

// EncodeProperties renders rec's recurrence properties as an xCal
// <properties> element.
func EncodeProperties(rec *recurrence.Recurrence) *etree.Element {
	props := etree.NewElement("properties")

	if start := rec.Start(); !start.IsZero() {
		dtstart := props.CreateElement("dtstart")
		if rec.Floating() {
			dtstart.CreateElement("date").SetText(start.Format(dateFormat))
		} else {
			dtstart.CreateElement("date-time").SetText(start.UTC().Format(dateTimeFormat))
		}
	}

	for _, rule := range rec.RRules() {
		if recur := encodeRecur(rule); recur != nil {
			props.CreateElement("rrule").AddChild(recur)
		}
	}
	for _, rule := range rec.ExRules() {
		if recur := encodeRecur(rule); recur != nil {
			props.CreateElement("exrule").AddChild(recur)
		}
	}

	encodeDates(props, "rdate", rec.RDates(), rec.RDateTimes())
	encodeDates(props, "exdate", rec.ExDates(), rec.ExDateTimes())

	return props
}

// encodeRecur renders one rule as an xCal <recur> value element, or nil
// for a rule with no cadence.
func encodeRecur(rule *recurrence.Rule) *etree.Element {
	freq, ok := frequencyNames[rule.Period()]
	if !ok {
		return nil
	}
	recur := etree.NewElement("recur")
	recur.CreateElement("freq").SetText(freq)
	if f := rule.Frequency(); f > 1 {
		recur.CreateElement("interval").SetText(strconv.Itoa(f))
	}
	switch count := rule.Duration(); {
	case count > 0:
		recur.CreateElement("count").SetText(strconv.Itoa(count))
	case count == 0:
		if until := rule.Until(); !until.IsZero() {
			recur.CreateElement("until").SetText(until.UTC().Format(dateTimeFormat))
		}
	}
	if ws := rule.WeekStart(); ws >= 2 && ws <= 7 {
		recur.CreateElement("wkst").SetText(weekdayNames[ws-1])
	}
	for _, p := range rule.ByDays() {
		if p.Day < 1 || p.Day > 7 {
			continue
		}
		text := weekdayNames[p.Day-1]
		if p.Pos != 0 {
			text = strconv.Itoa(p.Pos) + text
		}
		recur.CreateElement("byday").SetText(text)
	}
	addIntValues(recur, "bymonthday", rule.ByMonthDays())
	addIntValues(recur, "byyearday", rule.ByYearDays())
	addIntValues(recur, "byweekno", rule.ByWeekNumbers())
	addIntValues(recur, "bymonth", rule.ByMonths())
	addIntValues(recur, "byhour", rule.ByHours())
	addIntValues(recur, "byminute", rule.ByMinutes())
	addIntValues(recur, "bysecond", rule.BySeconds())
	addIntValues(recur, "bysetpos", rule.BySetPos())
	return recur
}

func addIntValues(parent *etree.Element, name string, values []int) {
	for _, v := range values {
		parent.CreateElement(name).SetText(strconv.Itoa(v))
	}
}

// encodeDates emits one property element per value; xCal carries each
// date or date-time in its own typed value element.
func encodeDates(props *etree.Element, name string, dates, dateTimes []time.Time) {
	if len(dates) == 0 && len(dateTimes) == 0 {
		return
	}
	elem := props.CreateElement(name)
	for _, t := range dateTimes {
		elem.CreateElement("date-time").SetText(t.UTC().Format(dateTimeFormat))
	}
	for _, t := range dates {
		elem.CreateElement("date").SetText(t.Format(dateFormat))
	}
}
