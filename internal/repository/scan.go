package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// dbTime scans timestamps from postgres (time.Time) and sqlite (time.Time or text).
type dbTime struct{ t time.Time }

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (d *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = v.UTC()
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.t = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (d *dbTime) parse(s string) error {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			d.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}

// jsonText scans a JSON/JSONB column delivered as text or bytes.
type jsonText struct{ b []byte }

func (j *jsonText) Scan(src any) error {
	switch v := src.(type) {
	case string:
		j.b = []byte(v)
	case []byte:
		j.b = append([]byte(nil), v...)
	case nil:
		j.b = nil
	default:
		return fmt.Errorf("unsupported json value %T", src)
	}
	return nil
}

func (j jsonText) decode(dst any) error {
	if len(j.b) == 0 {
		return nil
	}
	return json.Unmarshal(j.b, dst)
}

func encodeJSON(v any, empty string) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return empty
	}
	return string(b)
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
