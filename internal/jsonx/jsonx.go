// Package jsonx holds small jx helpers shared by the cart and order codecs.
//
// The persisted documents were historically written by a browser client, so
// the decoders are lenient: numbers may carry a fractional part, timestamps
// may lack a zone or a time of day, and null is accepted wherever a value is
// optional.
package jsonx

import (
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// timeLayouts are tried in order when parsing a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses s using the accepted layouts. Zone-less values are UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("parse time %q", s)
}

// FormatTime renders t in RFC 3339 with nanoseconds.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// Time reads a timestamp. null and "" decode as the zero time.
func Time(d *jx.Decoder) (time.Time, error) {
	if d.Next() == jx.Null {
		return time.Time{}, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTime(s)
}

// OptTime reads a timestamp that may be absent. Zero decodes as nil.
func OptTime(d *jx.Decoder) (*time.Time, error) {
	t, err := Time(d)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

// Int64 reads a number, rounding fractional values to the nearest integer.
// null decodes as 0.
func Int64(d *jx.Decoder) (int64, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	f, err := d.Float64()
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f)), nil
}

// Int is Int64 narrowed to int.
func Int(d *jx.Decoder) (int, error) {
	v, err := Int64(d)
	return int(v), err
}

// Str reads a string. null decodes as "".
func Str(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// Bool reads a boolean. null decodes as false.
func Bool(d *jx.Decoder) (bool, error) {
	if d.Next() == jx.Null {
		return false, d.Null()
	}
	return d.Bool()
}

// Empty reports whether data holds no document at all.
func Empty(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

// Field writes "name": value.
func Field(e *jx.Encoder, name, value string) {
	e.FieldStart(name)
	e.Str(value)
}

// FieldOmitEmpty writes the field only when value is not empty.
func FieldOmitEmpty(e *jx.Encoder, name, value string) {
	if value != "" {
		Field(e, name, value)
	}
}

// IntField writes "name": value.
func IntField(e *jx.Encoder, name string, value int64) {
	e.FieldStart(name)
	e.Int64(value)
}

// TimeField writes "name": "<RFC 3339>".
func TimeField(e *jx.Encoder, name string, t time.Time) {
	Field(e, name, FormatTime(t))
}

// OptTimeField writes the field only when t is set.
func OptTimeField(e *jx.Encoder, name string, t *time.Time) {
	if t != nil && !t.IsZero() {
		TimeField(e, name, *t)
	}
}
