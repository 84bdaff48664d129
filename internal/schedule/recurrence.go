package schedule

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind names a recurrence pattern.
type Kind string

const (
	KindNone    Kind = ""
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
)

// Rule is one variant of a recurrence. The set of variants is closed:
// WeeklyRule, MonthlyRule and YearlyRule.
type Rule interface {
	Kind() Kind
	next(from time.Time) time.Time
}

// WeeklyRule repeats on a day of the week, 0=Monday..6=Sunday.
// A nil DOW repeats on the weekday of the completed occurrence.
type WeeklyRule struct {
	DOW *int
}

// MonthlyRule repeats on a day of the month. A nil Day keeps the
// completed occurrence's day.
type MonthlyRule struct {
	Day *int
}

// YearlyRule repeats on a month and day. Nil fields keep the completed
// occurrence's values.
type YearlyRule struct {
	Month *int
	Day   *int
}

func (WeeklyRule) Kind() Kind  { return KindWeekly }
func (MonthlyRule) Kind() Kind { return KindMonthly }
func (YearlyRule) Kind() Kind  { return KindYearly }

func (r WeeklyRule) next(from time.Time) time.Time {
	current := weekday(from)
	target := current
	if r.DOW != nil {
		target = *r.DOW
	}
	delta := (target - current + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return from.AddDate(0, 0, delta)
}

func (r MonthlyRule) next(from time.Time) time.Time {
	day := from.Day()
	if r.Day != nil {
		day = *r.Day
	}
	year, month := from.Year(), from.Month()+1
	if month > time.December {
		month = time.January
		year++
	}
	return clampedDate(year, month, day, from.Location())
}

func (r YearlyRule) next(from time.Time) time.Time {
	month, day := from.Month(), from.Day()
	if r.Month != nil {
		month = time.Month(*r.Month)
	}
	if r.Day != nil {
		day = *r.Day
	}
	return clampedDate(from.Year()+1, month, day, from.Location())
}

// Recurrence holds an optional Rule. The zero value means no recurrence.
type Recurrence struct {
	Rule Rule
}

// Weekly, Monthly and Yearly build recurrences; pass nil for unset fields.
func Weekly(dow *int) Recurrence { return Recurrence{Rule: WeeklyRule{DOW: dow}} }

func Monthly(day *int) Recurrence { return Recurrence{Rule: MonthlyRule{Day: day}} }

func Yearly(month, day *int) Recurrence {
	return Recurrence{Rule: YearlyRule{Month: month, Day: day}}
}

// IsSet reports whether a rule is present.
func (r Recurrence) IsSet() bool {
	return r.Rule != nil
}

// Kind returns the rule's kind, or KindNone.
func (r Recurrence) Kind() Kind {
	if r.Rule == nil {
		return KindNone
	}
	return r.Rule.Kind()
}

// Next returns the date of the occurrence following from. Without a rule
// it advances a single day.
func (r Recurrence) Next(from time.Time) time.Time {
	if r.Rule == nil {
		return from.AddDate(0, 0, 1)
	}
	return r.Rule.next(from)
}

type weeklyJSON struct {
	Type Kind `json:"type"`
	DOW  *int `json:"dow,omitempty"`
}

type monthlyJSON struct {
	Type Kind `json:"type"`
	Day  *int `json:"day,omitempty"`
}

type yearlyJSON struct {
	Type  Kind `json:"type"`
	Month *int `json:"month,omitempty"`
	Day   *int `json:"day,omitempty"`
}

// MarshalJSON encodes the rule as {"type": ...} or null.
func (r Recurrence) MarshalJSON() ([]byte, error) {
	switch rule := r.Rule.(type) {
	case WeeklyRule:
		return json.Marshal(weeklyJSON{Type: KindWeekly, DOW: rule.DOW})
	case MonthlyRule:
		return json.Marshal(monthlyJSON{Type: KindMonthly, Day: rule.Day})
	case YearlyRule:
		return json.Marshal(yearlyJSON{Type: KindYearly, Month: rule.Month, Day: rule.Day})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes leniently; input ParseRecurrence rejects becomes
// no recurrence.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	parsed, _ := ParseRecurrence(data)
	*r = parsed
	return nil
}

// ParseRecurrence reads a loosely-typed recurrence payload. null, an empty
// payload and {"type":"none"} yield no recurrence. Out-of-range or
// non-integer sub-fields are dropped. The bool is false when the payload is
// not an object or names an unknown type.
func ParseRecurrence(raw json.RawMessage) (Recurrence, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Recurrence{}, true
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		return Recurrence{}, false
	}

	kind, _ := obj["type"].(string)
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindWeekly:
		return Weekly(intField(obj, "dow", 0, 6)), true
	case KindMonthly:
		return Monthly(intField(obj, "day", 1, 31)), true
	case KindYearly:
		return Yearly(intField(obj, "month", 1, 12), intField(obj, "day", 1, 31)), true
	case "none":
		return Recurrence{}, true
	default:
		return Recurrence{}, false
	}
}

func intField(obj map[string]any, key string, lo, hi int) *int {
	var n int
	switch v := obj[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n < lo || n > hi {
		return nil
	}
	return &n
}
