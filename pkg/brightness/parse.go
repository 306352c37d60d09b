package brightness

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Expression is a parsed brightness argument like "50", "+10" or "-25%".
type Expression struct {
	Sign    byte // '+', '-', or 0 for an absolute value
	Value   int
	Percent bool
}

// ParseError reports a malformed brightness or countdown argument.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// Parse parses a brightness expression: an optional leading '+' or '-',
// a run of digits, and an optional trailing '%'.
func Parse(s string) (Expression, error) {
	var expr Expression
	digits := s
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		expr.Sign = digits[0]
		digits = digits[1:]
	}
	if len(digits) > 0 && digits[len(digits)-1] == '%' {
		expr.Percent = true
		digits = digits[:len(digits)-1]
	}
	if len(digits) == 0 {
		return Expression{}, &ParseError{Input: s, Reason: "missing value"}
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Expression{}, &ParseError{Input: s, Reason: "not a number"}
		}
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return Expression{}, &ParseError{Input: s, Reason: "value too large"}
	}
	expr.Value = v
	return expr, nil
}

// ParseCountdown parses a fade duration in seconds. An empty string
// means no fade.
func ParseCountdown(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "not a number"}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Input: s, Reason: "not a finite number"}
	}
	if f < 0 {
		return 0, &ParseError{Input: s, Reason: "must not be negative"}
	}
	return time.Duration(f * float64(time.Second)), nil
}
