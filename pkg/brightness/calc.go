package brightness

import "fmt"

// OutOfRangeError reports a resolved brightness outside [0, Max].
type OutOfRangeError struct {
	Target int
	Max    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("brightness %d is out of range [0, %d]", e.Target, e.Max)
}

// Resolve turns a parsed expression into an absolute brightness level.
// Percentages are taken against max with integer truncation, and a sign
// applies the value as a delta to current. A result outside [0, max] is
// rejected, never clamped.
func Resolve(expr Expression, current, max int) (int, error) {
	v := expr.Value
	if expr.Percent {
		v = max * v / 100
	}
	switch expr.Sign {
	case '+':
		v = current + v
	case '-':
		v = current - v
	}
	if v < 0 || v > max {
		return 0, &OutOfRangeError{Target: v, Max: max}
	}
	return v, nil
}
