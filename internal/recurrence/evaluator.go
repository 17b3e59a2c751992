package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultEnumerationCap bounds Enumerate when the caller passes no cap.
const DefaultEnumerationCap = 30

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
	FrequencyCustom  Frequency = "custom"
)

var weekdayCodes = map[string]struct{}{
	"MO": {}, "TU": {}, "WE": {}, "TH": {}, "FR": {}, "SA": {}, "SU": {},
}

// Config is the user-facing recurrence configuration. It is formatted into
// an RFC 5545 RRULE; only FREQ, INTERVAL, BYDAY, BYMONTHDAY, UNTIL and COUNT
// are used.
type Config struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval,omitempty"` // every N units, 0 means 1
	DaysOfWeek []string   `json:"days_of_week,omitempty"`
	DayOfMonth *int       `json:"day_of_month,omitempty"` // 1-31
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty"`
}

// Validate rejects configurations that cannot be formatted into a rule.
func (c Config) Validate() error {
	switch c.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly, FrequencyCustom:
	default:
		return fmt.Errorf("unknown frequency %q", c.Frequency)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must be at least 1")
	}
	for _, d := range c.DaysOfWeek {
		if _, ok := weekdayCodes[d]; !ok {
			return fmt.Errorf("unknown weekday code %q", d)
		}
	}
	if c.DayOfMonth != nil && (*c.DayOfMonth < 1 || *c.DayOfMonth > 31) {
		return fmt.Errorf("day_of_month must be between 1 and 31")
	}
	if c.EndDate != nil && c.Count != nil {
		return fmt.Errorf("end_date and count are mutually exclusive")
	}
	if c.Count != nil && *c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	return nil
}

// baseFrequency resolves the RRULE FREQ. A custom frequency derives it from
// whichever field is populated: weekdays imply WEEKLY, a day-of-month implies
// MONTHLY, otherwise DAILY.
func (c Config) baseFrequency() string {
	switch c.Frequency {
	case FrequencyDaily:
		return "DAILY"
	case FrequencyWeekly:
		return "WEEKLY"
	case FrequencyMonthly:
		return "MONTHLY"
	case FrequencyYearly:
		return "YEARLY"
	default:
		if len(c.DaysOfWeek) > 0 {
			return "WEEKLY"
		}
		if c.DayOfMonth != nil {
			return "MONTHLY"
		}
		return "DAILY"
	}
}

// RRule formats the configuration as a deterministic RRULE string.
func (c Config) RRule() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	freq := c.baseFrequency()
	parts := []string{"FREQ=" + freq}

	if c.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(c.Interval))
	}
	if freq == "WEEKLY" && len(c.DaysOfWeek) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(c.DaysOfWeek, ","))
	}
	if freq == "MONTHLY" && c.DayOfMonth != nil {
		parts = append(parts, "BYMONTHDAY="+strconv.Itoa(*c.DayOfMonth))
	}
	if c.EndDate != nil {
		parts = append(parts, "UNTIL="+c.EndDate.UTC().Format("20060102"))
	} else if c.Count != nil {
		parts = append(parts, "COUNT="+strconv.Itoa(*c.Count))
	}

	return strings.Join(parts, ";"), nil
}

// Validate reports whether the RRULE string parses.
func Validate(rruleString string) bool {
	_, err := rrule.StrToRRule(strings.TrimPrefix(rruleString, "RRULE:"))
	return err == nil
}

// Enumerate expands the rule anchored at anchor into the calendar dates that
// fall inside [windowStart, windowEnd], at most limit entries. Dates are
// returned as midnight UTC instants in ascending order.
func Enumerate(rruleString string, anchor, windowStart, windowEnd time.Time, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = DefaultEnumerationCap
	}
	set, err := parseSet(rruleString, anchor)
	if err != nil {
		return nil, err
	}

	start := DateOf(windowStart)
	end := DateOf(windowEnd)

	occurrences := set.Between(start, end, true)
	dates := make([]time.Time, 0, len(occurrences))
	for _, occ := range occurrences {
		if len(dates) >= limit {
			break
		}
		dates = append(dates, DateOf(occ))
	}
	return dates, nil
}

// NextAfter returns the first occurrence strictly after refDate, or false
// when the rule is exhausted.
func NextAfter(rruleString string, anchor, refDate time.Time) (time.Time, bool, error) {
	set, err := parseSet(rruleString, anchor)
	if err != nil {
		return time.Time{}, false, err
	}
	next := set.After(DateOf(refDate), false)
	if next.IsZero() {
		return time.Time{}, false, nil
	}
	return DateOf(next), true, nil
}

// DateOf truncates an instant to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func parseSet(rruleString string, anchor time.Time) (*rrule.Set, error) {
	dtstart := DateOf(anchor)
	src := fmt.Sprintf("DTSTART:%s\nRRULE:%s", dtstart.Format("20060102T150405"), strings.TrimPrefix(rruleString, "RRULE:"))

	set, err := rrule.StrToRRuleSet(src)
	if err != nil {
		// Some rule strings carry their own DTSTART or prefix; fall back to
		// parsing the bare rule and anchoring it explicitly.
		rule, rerr := rrule.StrToRRule(strings.TrimPrefix(rruleString, "RRULE:"))
		if rerr != nil {
			return nil, fmt.Errorf("parse rrule %q: %w", rruleString, err)
		}
		rule.DTStart(dtstart)
		set = &rrule.Set{}
		set.RRule(rule)
		set.DTStart(dtstart)
	}
	return set, nil
}
