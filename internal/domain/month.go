package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Month identifies a single billing period, wire format "YYYY-MM".
type Month struct {
	Year int
	Mon  time.Month
}

// ParseMonth parses a "YYYY-MM" string into a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Mon: t.Month()}, nil
}

// MonthOf returns the billing month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Mon))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// FirstDay returns midnight UTC on the first day of the month.
func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Mon < other.Mon
}

func (m Month) After(other Month) bool {
	return other.Before(m)
}

func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// MonthsBetween returns the inclusive range [from, to], empty when from is
// after to.
func MonthsBetween(from, to Month) []Month {
	if from.After(to) {
		return nil
	}
	var months []Month
	for m := from; !m.After(to); m = m.Next() {
		months = append(months, m)
	}
	return months
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(data []byte) error {
	parsed, err := ParseMonth(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer so Month columns are stored as "YYYY-MM".
func (m Month) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Month) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return m.UnmarshalText([]byte(v))
	case []byte:
		return m.UnmarshalText(v)
	case nil:
		*m = Month{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Month", src)
	}
}

// MonthList is an ordered set of billing months. Legacy rows store
// bulan_dibayar either as a JSON array or as a JSON string containing an
// encoded array; both forms are normalized here, at the storage boundary,
// so everything downstream only ever sees parsed months.
type MonthList []Month

func (l MonthList) Strings() []string {
	out := make([]string, len(l))
	for i, m := range l {
		out[i] = m.String()
	}
	return out
}

// Contains reports whether m is in the list.
func (l MonthList) Contains(m Month) bool {
	for _, v := range l {
		if v == m {
			return true
		}
	}
	return false
}

func (l *MonthList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return l.decode(raw)
}

func (l *MonthList) decode(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		// Double-encoded legacy form: "[\"2024-01\"]".
		var inner []string
		if err := json.Unmarshal([]byte(v), &inner); err != nil {
			return fmt.Errorf("bulan_dibayar is not an encoded month list: %w", err)
		}
		return l.fromStrings(inner)
	case []interface{}:
		strs := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("bulan_dibayar entry %v is not a string", item)
			}
			strs = append(strs, s)
		}
		return l.fromStrings(strs)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("bulan_dibayar has unsupported shape %T", raw)
	}
}

func (l *MonthList) fromStrings(strs []string) error {
	months := make(MonthList, 0, len(strs))
	for _, s := range strs {
		m, err := ParseMonth(s)
		if err != nil {
			return err
		}
		months = append(months, m)
	}
	*l = months
	return nil
}

func (l MonthList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Strings())
}

func (l MonthList) Value() (driver.Value, error) {
	return json.Marshal(l.Strings())
}

func (l *MonthList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return l.UnmarshalJSON(v)
	case string:
		return l.UnmarshalJSON([]byte(v))
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into MonthList", src)
	}
}
