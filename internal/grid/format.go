package grid

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// FormatValue renders a primitive value the way it appears on a generated
// command line. Downstream tools build file names from these strings, so
// the rule is fixed:
//
//   - whole numbers that fit in an int64 render as integers ("10", "250");
//   - other numbers render through FormatFloat ("1e-06", "0.0001", "0.4");
//   - strings render verbatim;
//   - bools render as "true" or "false".
//
// FormatValue panics on values NewAxis would have rejected.
func FormatValue(v cty.Value) string {
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return strconv.FormatBool(v.True())
	case cty.Number:
		return formatNumber(v.AsBigFloat())
	default:
		panic("grid: cannot format value of type " + v.Type().FriendlyName())
	}
}

func formatNumber(bf *big.Float) string {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return strconv.FormatInt(i, 10)
		}
	}
	f, _ := bf.Float64()
	return FormatFloat(f)
}

// FormatFloat returns the shortest decimal string that round-trips to f.
// Fixed notation is used when the decimal exponent is in [-4, 16), with a
// trailing ".0" for whole values; scientific notation otherwise, with a sign
// and at least two exponent digits ("1e-05", "1e+16").
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	// "-d.dddde±XX" with the minimal number of digits.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expStr)

	var b strings.Builder
	if strings.HasPrefix(mant, "-") {
		b.WriteByte('-')
		mant = mant[1:]
	}
	digits := strings.Replace(mant, ".", "", 1)

	if exp < -4 || exp >= 16 {
		b.WriteByte(digits[0])
		if len(digits) > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('e')
		if exp < 0 {
			b.WriteByte('-')
			exp = -exp
		} else {
			b.WriteByte('+')
		}
		if exp < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.Itoa(exp))
		return b.String()
	}

	if exp < 0 {
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -exp-1))
		b.WriteString(digits)
		return b.String()
	}

	intLen := exp + 1
	if len(digits) <= intLen {
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", intLen-len(digits)))
		b.WriteString(".0")
		return b.String()
	}
	b.WriteString(digits[:intLen])
	b.WriteByte('.')
	b.WriteString(digits[intLen:])
	return b.String()
}
