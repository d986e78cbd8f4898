package invoice

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CoerceQuantity turns user input into a quantity >= 1. Integers and decimal
// strings are accepted, fractions truncate toward zero, and anything absent,
// unparsable or below 1 becomes 1.
func CoerceQuantity(v any) int {
	switch x := v.(type) {
	case string:
		return fromString(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	}
	q, err := cast.ToIntE(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 1
		}
		return fromFloat(f)
	}
	if q < 1 || q > math.MaxInt32 {
		return 1
	}
	return q
}

// fromString reads base-10 input only; prefixed literals such as "0x10" or
// "1_000" are invalid.
func fromString(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 1 || n > math.MaxInt32 {
			return 1
		}
		return int(n)
	}
	if strings.ContainsAny(s, "xXpP_") {
		return 1
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1
	}
	return fromFloat(f)
}

func fromFloat(f float64) int {
	if math.IsNaN(f) || f < 1 || f > math.MaxInt32 {
		return 1
	}
	return int(f)
}
