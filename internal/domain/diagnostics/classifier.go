package diagnostics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Status is the outcome of comparing a measured value with its reference range.
type Status int

const (
	StatusNormal Status = iota
	StatusLow
	StatusHigh
	StatusAbnormal
)

var statusNames = [...]string{
	StatusNormal:   "Normal",
	StatusLow:      "Low",
	StatusHigh:     "High",
	StatusAbnormal: "Abnormal",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if strings.EqualFold(name, string(text)) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// dashes maps UTF-8 en/em dashes that were decoded as Windows-1252, and the
// minus sign, to ASCII '-'. Every other dash is a Pd rune and is handled in
// normalizeRange.
var dashes = strings.NewReplacer(
	"â€“", "-",
	"â€”", "-",
	"−", "-",
)

var (
	intervalPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)$`)
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// normalizeRange unifies dashes and drops all whitespace.
func normalizeRange(r string) string {
	r = dashes.Replace(r)
	return strings.Map(func(c rune) rune {
		switch {
		case unicode.IsSpace(c):
			return -1
		case unicode.Is(unicode.Pd, c):
			return '-'
		}
		return c
	}, r)
}

func parseValue(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f, err == nil
}

// rule is one reference-range form. match sees the normalized range; apply
// decides the status and returns Normal when a number cannot be parsed.
type rule struct {
	name  string
	match func(ref string) bool
	apply func(value, ref string) Status
}

// rules are tried in order and the first match decides.
var rules = []rule{
	{
		name:  "interval",
		match: intervalPattern.MatchString,
		apply: func(value, ref string) Status {
			m := intervalPattern.FindStringSubmatch(ref)
			low, err1 := strconv.ParseFloat(m[1], 64)
			high, err2 := strconv.ParseFloat(m[2], 64)
			v, ok := parseValue(value)
			if err1 != nil || err2 != nil || !ok {
				return StatusNormal
			}
			switch {
			case v < low:
				return StatusLow
			case v > high:
				return StatusHigh
			}
			return StatusNormal
		},
	},
	{
		name:  "below",
		match: func(ref string) bool { return strings.HasPrefix(ref, "<") },
		apply: func(value, ref string) Status {
			bound, err := strconv.ParseFloat(ref[1:], 64)
			v, ok := parseValue(value)
			if err != nil || !ok {
				return StatusNormal
			}
			if v >= bound {
				return StatusHigh
			}
			return StatusNormal
		},
	},
	{
		// "up to 20" arrives here as "upto20".
		name:  "upto",
		match: func(ref string) bool { return strings.HasPrefix(strings.ToLower(ref), "upto") },
		apply: func(value, ref string) Status {
			num := numberPattern.FindString(ref)
			if num == "" {
				return StatusNormal
			}
			bound, err := strconv.ParseFloat(num, 64)
			v, ok := parseValue(value)
			if err != nil || !ok {
				return StatusNormal
			}
			if v > bound {
				return StatusHigh
			}
			return StatusNormal
		},
	},
	qualitative("positive"),
	qualitative("negative"),
}

func qualitative(expected string) rule {
	return rule{
		name:  expected,
		match: func(ref string) bool { return strings.EqualFold(ref, expected) },
		apply: func(value, _ string) Status {
			if strings.EqualFold(strings.TrimSpace(value), expected) {
				return StatusNormal
			}
			return StatusAbnormal
		},
	}
}

// Classify compares value against a free-text reference range such as
// "1-10", "<5", "upto 20" or "Positive". A range that matches none of these
// forms, including the empty range, is Normal, as is any value that cannot
// be read as a number where a number is needed. It never fails and is safe
// for concurrent use.
func Classify(value, normalRange string) Status {
	ref := normalizeRange(normalRange)
	if ref == "" {
		return StatusNormal
	}
	for _, r := range rules {
		if r.match(ref) {
			return r.apply(value, ref)
		}
	}
	return StatusNormal
}

// ClassifyRange is Classify for a nullable range column.
func ClassifyRange(value string, normalRange *string) Status {
	if normalRange == nil {
		return StatusNormal
	}
	return Classify(value, *normalRange)
}
