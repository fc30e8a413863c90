package sailthru

import "math"

// ToCents converts a decimal currency amount to integer cents, rounding to
// the nearest cent. The absolute value is taken; callers wanting signed cents
// (discounts) negate the result. Missing or non-numeric amounts are 0.
func ToCents(amount interface{}) int64 {
	return int64(math.Round(math.Abs(numberValue(amount)) * 100))
}
