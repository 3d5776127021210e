package recurrence

// Type is the closed legacy category a rule's BY*-field combination maps
// onto. Constraint combinations the legacy model could not express
// classify as TypeOther.
type Type int

const (
	TypeNone Type = iota
	TypeMinutely
	TypeHourly
	TypeDaily
	TypeWeekly
	TypeMonthlyDay
	TypeMonthlyPos
	TypeYearlyMonth
	TypeYearlyDay
	TypeYearlyPos
	TypeOther
)

var typeNames = map[Type]string{
	TypeNone:        "none",
	TypeMinutely:    "minutely",
	TypeHourly:      "hourly",
	TypeDaily:       "daily",
	TypeWeekly:      "weekly",
	TypeMonthlyDay:  "monthly-by-day",
	TypeMonthlyPos:  "monthly-by-position",
	TypeYearlyMonth: "yearly-by-month",
	TypeYearlyDay:   "yearly-by-day",
	TypeYearlyPos:   "yearly-by-position",
	TypeOther:       "other",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Type classifies the default inclusion rule. The result is cached until
// the next mutation.
func (r *Recurrence) Type() Type {
	if !r.typeValid {
		r.cachedType = Classify(r.defaultRule(false))
		r.typeValid = true
	}
	return r.cachedType
}

// Classify maps one rule's BY*-field combination onto its legacy
// category. BYSETPOS, BYSECOND, BYWEEKNO, BYMINUTE and BYHOUR have no
// legacy equivalent; BYYEARDAY and BYMONTH are only legal under a yearly
// period, BYDAY only under yearly, monthly or weekly periods.
func Classify(rule *Rule) Type {
	if rule == nil {
		return TypeNone
	}

	if len(rule.bySetPos) > 0 || len(rule.bySeconds) > 0 || len(rule.byWeekNumbers) > 0 {
		return TypeOther
	}
	if len(rule.byMinutes) > 0 || len(rule.byHours) > 0 {
		return TypeOther
	}
	if (len(rule.byYearDays) > 0 || len(rule.byMonths) > 0) && rule.period != PeriodYearly {
		return TypeOther
	}
	if len(rule.byDays) > 0 &&
		rule.period != PeriodYearly && rule.period != PeriodMonthly && rule.period != PeriodWeekly {
		return TypeOther
	}

	switch rule.period {
	case PeriodNone:
		return TypeNone
	case PeriodMinutely:
		return TypeMinutely
	case PeriodHourly:
		return TypeHourly
	case PeriodDaily:
		return TypeDaily
	case PeriodWeekly:
		return TypeWeekly
	case PeriodMonthly:
		switch {
		case len(rule.byDays) == 0:
			return TypeMonthlyDay
		case len(rule.byMonthDays) == 0:
			return TypeMonthlyPos
		default:
			// Both position and date constraints set.
			return TypeOther
		}
	case PeriodYearly:
		switch {
		case len(rule.byDays) > 0:
			if len(rule.byMonthDays) == 0 && len(rule.byYearDays) == 0 {
				return TypeYearlyPos
			}
			return TypeOther
		case len(rule.byYearDays) > 0:
			if len(rule.byMonths) == 0 && len(rule.byMonthDays) == 0 {
				return TypeYearlyDay
			}
			return TypeOther
		default:
			return TypeYearlyMonth
		}
	default:
		return TypeOther
	}
}
