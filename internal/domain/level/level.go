// Package level turns the loose experience, proficiency and interest values
// found in profile and project data into a canonical [0,1] scale.
//
// A Level is a closed sum type: a named level, a fraction already in [0,1],
// a number of years, or nothing. Scorers never inspect the raw value; they
// go through Normalize, NormalizeRequired and NameOf.
package level

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind tags the representation held by a Level.
type Kind uint8

const (
	Missing Kind = iota
	Named
	Fraction
	Years
)

func (k Kind) String() string {
	switch k {
	case Named:
		return "named"
	case Fraction:
		return "fraction"
	case Years:
		return "years"
	default:
		return "missing"
	}
}

// Name is a canonical experience level name.
type Name string

const (
	Beginner     Name = "beginner"
	Intermediate Name = "intermediate"
	Advanced     Name = "advanced"
	Expert       Name = "expert"
)

const (
	// DefaultLevel is the normalized value of an unknown proficiency or interest.
	DefaultLevel = 0.4
	// DefaultRequired is the normalized value of an unknown requirement.
	DefaultRequired = 0.5
)

var anchors = map[string]float64{
	"beginner":     0.25,
	"low":          0.25,
	"intermediate": 0.5,
	"medium":       0.5,
	"advanced":     0.75,
	"expert":       1.0,
	"high":         1.0,
}

var canonical = map[string]Name{
	"beginner":     Beginner,
	"low":          Beginner,
	"intermediate": Intermediate,
	"medium":       Intermediate,
	"advanced":     Advanced,
	"expert":       Expert,
	"high":         Expert,
}

// Level is one of Named, Fraction, Years or Missing. The zero value is Missing.
type Level struct {
	kind  Kind
	name  string
	value float64
}

// None returns a Missing level.
func None() Level { return Level{} }

// Of returns a Named level. Blank names are Missing.
func Of(name string) Level {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Level{}
	}
	return Level{kind: Named, name: n}
}

// Frac returns a Fraction level. Non-finite values are Missing.
func Frac(v float64) Level {
	if !finite(v) {
		return Level{}
	}
	return Level{kind: Fraction, value: v}
}

// InYears returns a Years level. Non-finite values are Missing.
func InYears(v float64) Level {
	if !finite(v) {
		return Level{}
	}
	return Level{kind: Years, value: v}
}

// FromNumber classifies a raw number: values up to 1 are fractions,
// anything larger is a number of years.
func FromNumber(v float64) Level {
	if !finite(v) {
		return Level{}
	}
	if v <= 1 {
		return Frac(v)
	}
	return InYears(v)
}

// Parse reads a level from a storage string. Numeric strings follow FromNumber.
func Parse(s string) Level {
	s = strings.TrimSpace(s)
	if s == "" {
		return Level{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return FromNumber(v)
	}
	return Of(s)
}

// Kind reports the representation.
func (l Level) Kind() Kind { return l.kind }

// IsMissing reports whether the level carries no value.
func (l Level) IsMissing() bool { return l.kind == Missing }

// Value returns the numeric payload of a Fraction or Years level.
func (l Level) Value() float64 { return l.value }

func (l Level) String() string {
	switch l.kind {
	case Named:
		return l.name
	case Fraction, Years:
		return strconv.FormatFloat(l.value, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON writes names as strings, numbers as numbers and Missing as null.
func (l Level) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case Named:
		return json.Marshal(l.name)
	case Fraction, Years:
		return json.Marshal(l.value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, a number or null. Other shapes become Missing.
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = Level{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = Level{}
			return nil
		}
		*l = Parse(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*l = Level{}
		return nil
	}
	*l = FromNumber(v)
	return nil
}

// Normalize maps a proficiency or interest level to [0,1]. Unknown or
// missing values yield DefaultLevel.
func Normalize(l Level) float64 {
	return normalize(l, DefaultLevel)
}

// NormalizeRequired maps a requirement to [0,1]. Unknown or missing values
// yield DefaultRequired.
func NormalizeRequired(l Level) float64 {
	return normalize(l, DefaultRequired)
}

func normalize(l Level, fallback float64) float64 {
	switch l.kind {
	case Named:
		if v, ok := anchors[l.name]; ok {
			return v
		}
		return fallback
	case Fraction:
		return clamp01(l.value)
	case Years:
		return anchors[string(YearsToName(l.value))]
	default:
		return fallback
	}
}

// YearsToName buckets years of experience: <1 beginner, <3 intermediate,
// <5 advanced, otherwise expert. Non-finite input is Intermediate.
func YearsToName(years float64) Name {
	switch {
	case !finite(years):
		return Intermediate
	case years < 1:
		return Beginner
	case years < 3:
		return Intermediate
	case years < 5:
		return Advanced
	default:
		return Expert
	}
}

// NameOf resolves any level to a canonical name for seniority comparison.
func NameOf(l Level) Name {
	switch l.kind {
	case Named:
		if n, ok := canonical[l.name]; ok {
			return n
		}
		return Intermediate
	case Years:
		return YearsToName(l.value)
	case Fraction:
		v := clamp01(l.value)
		switch {
		case v <= 0.25:
			return Beginner
		case v <= 0.5:
			return Intermediate
		case v <= 0.75:
			return Advanced
		default:
			return Expert
		}
	default:
		return Intermediate
	}
}

// ToNum maps a level name to 1..4. Unknown names are 2.
func ToNum(n Name) int {
	switch Name(strings.ToLower(strings.TrimSpace(string(n)))) {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced:
		return 3
	case Expert:
		return 4
	default:
		return 2
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
