package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestConfigRRule(t *testing.T) {
	end := date(2026, time.March, 15)

	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "weekly with weekdays",
			config: Config{Frequency: FrequencyWeekly, DaysOfWeek: []string{"MO", "WE", "FR"}},
			want:   "FREQ=WEEKLY;BYDAY=MO,WE,FR",
		},
		{
			name:   "interval of one is omitted",
			config: Config{Frequency: FrequencyDaily, Interval: 1},
			want:   "FREQ=DAILY",
		},
		{
			name:   "daily every second day",
			config: Config{Frequency: FrequencyDaily, Interval: 2},
			want:   "FREQ=DAILY;INTERVAL=2",
		},
		{
			name:   "monthly on a fixed day",
			config: Config{Frequency: FrequencyMonthly, DayOfMonth: intPtr(15)},
			want:   "FREQ=MONTHLY;BYMONTHDAY=15",
		},
		{
			name:   "yearly",
			config: Config{Frequency: FrequencyYearly},
			want:   "FREQ=YEARLY",
		},
		{
			name:   "custom with weekdays derives weekly",
			config: Config{Frequency: FrequencyCustom, DaysOfWeek: []string{"TU", "TH"}},
			want:   "FREQ=WEEKLY;BYDAY=TU,TH",
		},
		{
			name:   "custom with day of month derives monthly",
			config: Config{Frequency: FrequencyCustom, DayOfMonth: intPtr(1)},
			want:   "FREQ=MONTHLY;BYMONTHDAY=1",
		},
		{
			name:   "bare custom derives daily",
			config: Config{Frequency: FrequencyCustom, Interval: 3},
			want:   "FREQ=DAILY;INTERVAL=3",
		},
		{
			name:   "end date becomes UNTIL",
			config: Config{Frequency: FrequencyDaily, EndDate: &end},
			want:   "FREQ=DAILY;UNTIL=20260315",
		},
		{
			name:   "count becomes COUNT",
			config: Config{Frequency: FrequencyWeekly, Count: intPtr(10)},
			want:   "FREQ=WEEKLY;COUNT=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.RRule()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidateRejections(t *testing.T) {
	end := date(2026, time.June, 1)

	tests := []struct {
		name   string
		config Config
	}{
		{"unknown frequency", Config{Frequency: "sometimes"}},
		{"negative interval", Config{Frequency: FrequencyDaily, Interval: -1}},
		{"unknown weekday code", Config{Frequency: FrequencyWeekly, DaysOfWeek: []string{"MONDAY"}}},
		{"day of month too small", Config{Frequency: FrequencyMonthly, DayOfMonth: intPtr(0)}},
		{"day of month too large", Config{Frequency: FrequencyMonthly, DayOfMonth: intPtr(32)}},
		{"end date and count together", Config{Frequency: FrequencyDaily, EndDate: &end, Count: intPtr(5)}},
		{"zero count", Config{Frequency: FrequencyDaily, Count: intPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.config.RRule()
			assert.Error(t, err)
		})
	}
}

func TestEnumerateWeekdayPattern(t *testing.T) {
	anchor := date(2026, time.January, 5) // a Monday
	rule := "FREQ=WEEKLY;BYDAY=MO,WE,FR"

	januaryOnly := []time.Time{
		date(2026, time.January, 5), date(2026, time.January, 7), date(2026, time.January, 9),
		date(2026, time.January, 12), date(2026, time.January, 14), date(2026, time.January, 16),
		date(2026, time.January, 19), date(2026, time.January, 21), date(2026, time.January, 23),
		date(2026, time.January, 26), date(2026, time.January, 28), date(2026, time.January, 30),
	}

	got, err := Enumerate(rule, anchor, anchor, date(2026, time.February, 1), 30)
	require.NoError(t, err)
	assert.Equal(t, januaryOnly, got)

	// The seeding window runs thirty days past the anchor; the January dates
	// are its prefix and the series continues on the following Monday.
	seeded, err := Enumerate(rule, anchor, anchor, anchor.AddDate(0, 0, 30), 30)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(seeded), len(januaryOnly))
	assert.Equal(t, januaryOnly, seeded[:len(januaryOnly)])
	assert.Equal(t, date(2026, time.February, 2), seeded[len(januaryOnly)])
}

func TestEnumerateOrderedAndOnPattern(t *testing.T) {
	anchor := date(2026, time.January, 6) // a Tuesday
	rule := "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU"

	got, err := Enumerate(rule, anchor, anchor, anchor.AddDate(1, 0, 0), 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, d := range got {
		assert.Equal(t, time.Tuesday, d.Weekday())
		if i > 0 {
			assert.True(t, d.After(got[i-1]), "dates must ascend")
			assert.Zero(t, int(d.Sub(got[i-1]).Hours())%(14*24))
		}
	}
}

func TestEnumerateRespectsCap(t *testing.T) {
	anchor := date(2026, time.March, 1)

	got, err := Enumerate("FREQ=DAILY", anchor, anchor, anchor.AddDate(1, 0, 0), 10)
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, anchor, got[0])
	assert.Equal(t, anchor.AddDate(0, 0, 9), got[9])
}

func TestEnumerateDefaultCap(t *testing.T) {
	anchor := date(2026, time.March, 1)

	got, err := Enumerate("FREQ=DAILY", anchor, anchor, anchor.AddDate(1, 0, 0), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultEnumerationCap)
}

func TestEnumerateFiltersDatesBeforeWindow(t *testing.T) {
	anchor := date(2026, time.January, 5)

	got, err := Enumerate("FREQ=DAILY", anchor, date(2026, time.January, 10), date(2026, time.January, 12), 30)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2026, time.January, 10),
		date(2026, time.January, 11),
		date(2026, time.January, 12),
	}, got)
}

func TestEnumerateHonorsCountAndUntil(t *testing.T) {
	anchor := date(2026, time.January, 5)
	farEnd := anchor.AddDate(1, 0, 0)

	counted, err := Enumerate("FREQ=DAILY;COUNT=3", anchor, anchor, farEnd, 30)
	require.NoError(t, err)
	assert.Len(t, counted, 3)

	bounded, err := Enumerate("FREQ=DAILY;UNTIL=20260110", anchor, anchor, farEnd, 30)
	require.NoError(t, err)
	assert.Len(t, bounded, 6)
	assert.Equal(t, date(2026, time.January, 10), bounded[len(bounded)-1])
}

func TestNextAfterIsStrict(t *testing.T) {
	anchor := date(2026, time.January, 5)
	rule := "FREQ=WEEKLY;BYDAY=MO,WE,FR"

	next, ok, err := NextAfter(rule, anchor, anchor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.January, 7), next, "the reference date itself must not be returned")

	next, ok, err = NextAfter(rule, anchor, date(2026, time.January, 6))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.January, 7), next)
}

func TestNextAfterExhaustedRule(t *testing.T) {
	anchor := date(2026, time.January, 5)

	_, ok, err := NextAfter("FREQ=DAILY;COUNT=1", anchor, anchor)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateRuleString(t *testing.T) {
	assert.True(t, Validate("FREQ=WEEKLY;BYDAY=MO"))
	assert.True(t, Validate("FREQ=MONTHLY;BYMONTHDAY=15;INTERVAL=2"))
	assert.False(t, Validate("FREQ=SOMETIMES"))
	assert.False(t, Validate(""))
}
