package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnassignedName is the denormalized owner-name placeholder for tasks
// that have no assigned user.
const UnassignedName = "unassigned"

// Timestamp accepts either a string date or a numeric epoch value on
// input and normalizes to a UTC instant. Epoch values above 1e11 are
// treated as milliseconds.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" || raw == `""` {
		ts.Time = time.Time{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return ts.parseString(s)
	}

	epoch, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp value: %s", raw)
	}
	ts.fromEpoch(epoch)
	return nil
}

func (ts *Timestamp) fromEpoch(epoch float64) {
	if epoch > 1e11 {
		ts.Time = time.UnixMilli(int64(epoch)).UTC()
	} else {
		ts.Time = time.Unix(int64(epoch), 0).UTC()
	}
}

func (ts *Timestamp) parseString(s string) error {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		ts.fromEpoch(epoch)
		return nil
	}
	return fmt.Errorf("invalid timestamp value: %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.UTC().Format(time.RFC3339))
}

func (ts Timestamp) Value() (driver.Value, error) {
	if ts.Time.IsZero() {
		return nil, nil
	}
	return ts.Time.UTC(), nil
}

func (ts *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parseString(v)
	case []byte:
		return ts.parseString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
}

func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero()
}

func (Timestamp) GormDataType() string {
	return "time"
}

// StringList stores an ordered list of identities as a JSON text
// column, which reads back the same under sqlite and postgres.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

func (l StringList) Contains(id string) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}

// Append adds id only if it is not already present.
func (l StringList) Append(id string) StringList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

func (l StringList) Remove(id string) StringList {
	out := make(StringList, 0, len(l))
	for _, item := range l {
		if item != id {
			out = append(out, item)
		}
	}
	return out
}
