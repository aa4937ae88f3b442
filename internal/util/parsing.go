package util

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type StringParsable interface {
	string | []string | int
}

func envVarStringSplitter(s string) []string {
	parts := strings.Split(s, ",")
	v := make([]string, 0, len(parts))
	for _, p := range parts {
		v = append(v, strings.TrimSpace(p))
	}
	return v
}

func envSliceTypeParser[T any](s string, f func(string) (T, error)) ([]T, error) {
	parts := envVarStringSplitter(s)
	v := make([]T, 0, len(parts))
	for _, p := range parts {
		v2, err := f(p)
		if err != nil {
			return v, err
		}
		v = append(v, v2)
	}
	return v, nil
}

// ParseStringAs parses the input string as a StringParsable type, returning the default
// if an error occurs. It will panic if the type from StringParsable is not implemented.
func ParseStringAs[T StringParsable](v string, def T) T {
	v = strings.Trim(v, `"`) // in case something comes in as if it were a json string

	var parser func(string) (any, error)
	switch any(def).(type) {
	case string:
		parser = func(s string) (any, error) { return s, nil }
	case []string:
		parser = func(s string) (any, error) {
			return envSliceTypeParser(s, func(s string) (string, error) { return s, nil })
		}
	case int:
		parser = func(s string) (any, error) { return strconv.Atoi(s) }
	default:
		panic("ParseStringAs got a type we can't handle")
	}

	val, err := parser(v)
	if err != nil {
		return def
	}
	return val.(T)
}

// ParseNumber parses a single numeric token. Unlike ParseStringAs it never
// substitutes a default: tokens that fail to parse come back as NaN so the
// normalization layer can apply its own fallback.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseNumberList parses a comma separated list of numeric tokens. Bad tokens
// become NaN rather than being dropped, preserving positional alignment with
// whatever the list indexes into. An empty input yields nil.
func ParseNumberList(s string) []float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := envVarStringSplitter(s)
	v := make([]float64, 0, len(parts))
	for _, p := range parts {
		v = append(v, ParseNumber(p))
	}
	return v
}

func RandomString(l int) string {
	id := uuid.NewString()
	s := strings.ReplaceAll(id, "-", "")
	for len(s) < l {
		id = uuid.NewString()
		t := strings.ReplaceAll(id, "-", "")
		s = s + t
	}
	return s[:l]
}
