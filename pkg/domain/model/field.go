package model

import (
	"math"
	"strconv"
	"time"
)

// FieldKind discriminates the loosely-typed parameter values the NLU
// collaborator delivers.
type FieldKind int

const (
	FieldMissing FieldKind = iota
	FieldString
	FieldNumber
)

// Field is one NLU parameter value: a string, a number, or missing. The
// external service does not guarantee either presence or type, so all
// defaulting lives in the accessors below rather than in the state machine.
type Field struct {
	Kind FieldKind
	Str  string
	Num  float64
}

// StringField wraps a string parameter value
func StringField(s string) Field {
	return Field{Kind: FieldString, Str: s}
}

// NumberField wraps a numeric parameter value
func NumberField(n float64) Field {
	return Field{Kind: FieldNumber, Num: n}
}

// StringOr returns the string value, or fallback when the field is missing
// or not a string.
func (f Field) StringOr(fallback string) string {
	if f.Kind != FieldString || f.Str == "" {
		return fallback
	}
	return f.Str
}

// NumberOr returns the numeric value, or fallback when the field is missing,
// zero, or not a number. A numeric value carried as a string (some agents do
// that for composite parameters) is parsed before giving up.
func (f Field) NumberOr(fallback float64) float64 {
	switch f.Kind {
	case FieldNumber:
		if f.Num == 0 {
			return fallback
		}
		return f.Num
	case FieldString:
		if n, err := strconv.ParseFloat(f.Str, 64); err == nil && n != 0 {
			return n
		}
	}
	return fallback
}

// Rounded returns a copy with the numeric value rounded to the given number
// of decimal places. Non-numeric fields pass through unchanged. Rounding is
// a display concern for echoed values, not stored precision.
func (f Field) Rounded(places int) Field {
	if f.Kind != FieldNumber {
		return f
	}
	pow := math.Pow(10, float64(places))
	f.Num = math.Round(f.Num*pow) / pow
	return f
}

// timeLayouts covers the formats the NLU delivers timestamps in. All values
// are treated as naive UTC-equivalent; offsets are read but not converted.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TimeOr parses the field as a timestamp, returning fallback when it is
// missing or unparsable.
func (f Field) TimeOr(fallback time.Time) time.Time {
	if f.Kind != FieldString || f.Str == "" {
		return fallback
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, f.Str); err == nil {
			return t
		}
	}
	return fallback
}

// Fields is the named parameter set of one resolved intent
type Fields map[string]Field

// Get returns the named field, or a missing field when absent
func (ff Fields) Get(name string) Field {
	if f, ok := ff[name]; ok {
		return f
	}
	return Field{Kind: FieldMissing}
}
