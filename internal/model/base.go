package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/pkg/timefmt"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Date is a calendar date without clock or zone, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	return d.Format(timefmt.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := timefmt.ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

func (d *Date) Scan(src interface{}) error {
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// DateTime is a wall-clock timestamp with no zone, serialized as
// 2006-01-02T15:04:05.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{timefmt.Wall(t)}
}

func (d DateTime) String() string {
	return d.Format(timefmt.DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := timefmt.ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = DateTime{t}
	return nil
}

func (d *DateTime) Scan(src interface{}) error {
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	*d = NewDateTime(t)
	return nil
}

func (d DateTime) Value() (driver.Value, error) {
	return d.String(), nil
}

func scanTime(src interface{}) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseStoredTime(string(v))
	case string:
		return parseStoredTime(v)
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into a date", src)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	s = strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	return timefmt.ParseDateTime(s)
}

// StrPtr returns nil for blank strings so optional columns store NULL.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
