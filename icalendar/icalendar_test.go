package icalendar

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librecur/recurrence"
)

func newComponent(props map[string][]ical.Prop) *ical.Component {
	comp := &ical.Component{
		Name:  ical.CompEvent,
		Props: make(ical.Props),
	}
	for name, values := range props {
		comp.Props[name] = values
	}
	return comp
}

func prop(name, value string) ical.Prop {
	return ical.Prop{Name: name, Params: make(ical.Params), Value: value}
}

func dateProp(name, value string) ical.Prop {
	p := prop(name, value)
	p.Params["VALUE"] = []string{"DATE"}
	return p
}

func TestDecode(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart: {prop("DTSTART", "20240101T090000Z")},
		ical.PropRecurrenceRule: {
			prop("RRULE", "FREQ=WEEKLY;BYDAY=MO,WE,FR"),
		},
		ical.PropExceptionDates: {
			prop("EXDATE", "20240103T090000Z"),
		},
	})

	rec, err := Decode(comp, time.UTC)
	require.NoError(t, err)

	assert.True(t, rec.Start().Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.False(t, rec.Floating())
	require.Len(t, rec.RRules(), 1)
	assert.Equal(t, recurrence.PeriodWeekly, rec.RRules()[0].Period())
	assert.Equal(t, [7]bool{true, false, true, false, true, false, false}, rec.Days())
	require.Len(t, rec.ExDateTimes(), 1)

	assert.True(t, rec.RecursAt(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)))
	assert.False(t, rec.RecursAt(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)))
}

func TestDecode_DateOnlyStart(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart:  {dateProp("DTSTART", "20240101")},
		ical.PropRecurrenceRule: {prop("RRULE", "FREQ=DAILY;INTERVAL=2;COUNT=5")},
	})

	rec, err := Decode(comp, time.UTC)
	require.NoError(t, err)

	assert.True(t, rec.Floating())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rec.Start())
	assert.Equal(t, 2, rec.Frequency())
	assert.Equal(t, 5, rec.Duration())
}

func TestDecode_RDateLists(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart: {prop("DTSTART", "20240101T090000Z")},
		ical.PropRecurrenceDates: {
			prop("RDATE", "20240201T100000Z,20240301T100000Z"),
			dateProp("RDATE", "20240401"),
		},
	})

	rec, err := Decode(comp, time.UTC)
	require.NoError(t, err)

	assert.Len(t, rec.RDateTimes(), 2)
	require.Len(t, rec.RDates(), 1)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), rec.RDates()[0])
}

func TestDecode_ExRule(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart:  {prop("DTSTART", "20240101T090000Z")},
		ical.PropRecurrenceRule: {prop("RRULE", "FREQ=DAILY")},
		propExceptionRule:       {prop("EXRULE", "FREQ=WEEKLY;BYDAY=WE")},
	})

	rec, err := Decode(comp, time.UTC)
	require.NoError(t, err)

	require.Len(t, rec.ExRules(), 1)
	assert.True(t, rec.RecursOnDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rec.RecursOnDate(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}

func TestDecode_LocalDateTimeUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart: {prop("DTSTART", "20240101T090000")},
	})

	rec, err := Decode(comp, berlin)
	require.NoError(t, err)
	assert.True(t, rec.Start().Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, berlin)))
}

func TestDecode_InvalidRRule(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropDateTimeStart:  {prop("DTSTART", "20240101T090000Z")},
		ical.PropRecurrenceRule: {prop("RRULE", "FREQ=SOMETIMES")},
	})

	_, err := Decode(comp, time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RRULE")
}

func TestEncode(t *testing.T) {
	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetWeekly(2, 1)
	rec.AddWeeklyDays([7]bool{true, false, true, false, false, false, false})
	rec.AddExDateTime(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	rec.AddRDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	comp := newComponent(nil)
	Encode(rec, comp)

	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, dtstart)
	assert.Equal(t, "20240101T090000Z", dtstart.Value)

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	require.NotNil(t, rruleProp)
	assert.Contains(t, rruleProp.Value, "FREQ=WEEKLY")
	assert.Contains(t, rruleProp.Value, "INTERVAL=2")
	assert.Contains(t, rruleProp.Value, "BYDAY=MO,WE")

	exdate := comp.Props.Get(ical.PropExceptionDates)
	require.NotNil(t, exdate)
	assert.Equal(t, "20240115T090000Z", exdate.Value)

	rdates := comp.Props.Values(ical.PropRecurrenceDates)
	require.Len(t, rdates, 1)
	assert.Equal(t, "20240601", rdates[0].Value)
	assert.Equal(t, []string{"DATE"}, rdates[0].Params["VALUE"])
}

func TestEncode_FloatingStart(t *testing.T) {
	rec := recurrence.New()
	rec.SetStartDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rec.SetDaily(1)

	comp := newComponent(nil)
	Encode(rec, comp)

	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	require.NotNil(t, dtstart)
	assert.Equal(t, "20240101", dtstart.Value)
	assert.Equal(t, []string{"DATE"}, dtstart.Params["VALUE"])
}

func TestEncode_ReplacesExistingProperties(t *testing.T) {
	comp := newComponent(map[string][]ical.Prop{
		ical.PropRecurrenceRule: {prop("RRULE", "FREQ=YEARLY")},
	})

	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetDaily(1)
	Encode(rec, comp)

	rules := comp.Props.Values(ical.PropRecurrenceRule)
	require.Len(t, rules, 1)
	assert.Contains(t, rules[0].Value, "FREQ=DAILY")
}

func TestRoundTrip(t *testing.T) {
	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetMonthly(1)
	rec.AddMonthlyPos(-1, 5)
	rec.SetDuration(12)
	rec.AddExDate(time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC))

	comp := newComponent(nil)
	Encode(rec, comp)

	decoded, err := Decode(comp, time.UTC)
	require.NoError(t, err)

	assert.True(t, decoded.Start().Equal(rec.Start()))
	assert.Equal(t, recurrence.TypeMonthlyPos, decoded.Type())
	assert.Equal(t, 12, decoded.Duration())
	assert.Equal(t, rec.MonthPositions(), decoded.MonthPositions())
	assert.Equal(t, rec.ExDates(), decoded.ExDates())

	// Behavior survives the trip, not just the fields.
	for _, date := range []time.Time{
		time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
	} {
		assert.Equal(t, rec.RecursOnDate(date), decoded.RecursOnDate(date), date.Format("2006-01-02"))
	}
}

func TestNewEvent(t *testing.T) {
	rec := recurrence.New()
	rec.SetStartDateTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	rec.SetDaily(1)

	comp := NewEvent(rec)

	assert.Equal(t, ical.CompEvent, comp.Name)
	uid := comp.Props.Get(ical.PropUID)
	require.NotNil(t, uid)
	assert.NotEmpty(t, uid.Value)
	assert.NotNil(t, comp.Props.Get(ical.PropDateTimeStamp))
	assert.NotNil(t, comp.Props.Get(ical.PropRecurrenceRule))
}
