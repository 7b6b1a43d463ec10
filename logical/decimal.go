// Package logical defines the canonical in-memory values produced for schema
// logical types, and the textual parsers used to build them from relaxed
// JSON input.
package logical

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ErrDecimalSyntax is returned by ParseDecimal for text that is not a number.
var ErrDecimalSyntax = errors.New("logical: invalid decimal syntax")

// Decimal is an arbitrary-precision decimal: unscaled × 10^-scale.
// The zero value is 0 with scale 0.
type Decimal struct {
	unscaled *big.Int
	scale    int
}

// NewDecimal returns unscaled × 10^-scale. The big.Int is copied.
func NewDecimal(unscaled *big.Int, scale int) Decimal {
	return Decimal{unscaled: new(big.Int).Set(unscaled), scale: scale}
}

// DecimalFromInt64 returns unscaled × 10^-scale.
func DecimalFromInt64(unscaled int64, scale int) Decimal {
	return Decimal{unscaled: big.NewInt(unscaled), scale: scale}
}

// maxExponent bounds the exponent ParseDecimal accepts.
const maxExponent = 999999999

// ParseDecimal parses a plain or exponent decimal literal such as "19.565",
// "-0.5", "+12" or "1.2E+3". The resulting scale is the number of fraction
// digits minus the exponent, which may be negative.
func ParseDecimal(s string) (Decimal, error) {
	if s == "" {
		return Decimal{}, fmt.Errorf("%w: empty text", ErrDecimalSyntax)
	}
	mant, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i+1:]
		if exp == "" {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
		}
	}
	sign := ""
	if mant != "" && (mant[0] == '+' || mant[0] == '-') {
		if mant[0] == '-' {
			sign = "-"
		}
		mant = mant[1:]
	}
	intPart, frac := mant, ""
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		intPart, frac = mant[:i], mant[i+1:]
	}
	if intPart == "" && frac == "" {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	if !allDigits(intPart) || !allDigits(frac) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	scale := len(frac)
	if exp != "" {
		e, err := strconv.Atoi(exp)
		if err != nil || e > maxExponent || e < -maxExponent {
			return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
		}
		scale -= e
	}
	digits := intPart + frac
	if digits == "" {
		digits = "0"
	}
	u, ok := new(big.Int).SetString(sign+digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrDecimalSyntax, s)
	}
	return Decimal{unscaled: u, scale: scale}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// DecimalFromFloat converts f through its shortest decimal representation, so
// 19.565 yields unscaled 19565 at scale 3.
func DecimalFromFloat(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("%w: %v", ErrDecimalSyntax, f)
	}
	d, err := ParseDecimal(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return Decimal{}, err
	}
	return d, nil
}

// DecimalFromTwosComplement interprets b as a big-endian two's-complement
// unscaled value.
func DecimalFromTwosComplement(b []byte, scale int) Decimal {
	u := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return Decimal{unscaled: u, scale: scale}
}

func (d Decimal) int() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return d.unscaled
}

// Unscaled returns a copy of the unscaled value.
func (d Decimal) Unscaled() *big.Int { return new(big.Int).Set(d.int()) }

// Scale returns the number of digits after the decimal point.
func (d Decimal) Scale() int { return d.scale }

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int { return d.int().Sign() }

// Precision returns the number of digits in the unscaled value; zero has
// precision 1.
func (d Decimal) Precision() int {
	u := d.int()
	if u.Sign() == 0 {
		return 1
	}
	return len(new(big.Int).Abs(u).String())
}

// IntegerDigits returns the number of digits left of the decimal point,
// computed from the precision and scale without expanding the value. It is
// zero or negative when |d| < 1.
func (d Decimal) IntegerDigits() int { return d.Precision() - d.scale }

// Rescale returns d at the given scale when that needs no rounding. Scaling
// up multiplies by 10^(scale-d.Scale()); callers bound that difference.
func (d Decimal) Rescale(scale int) (Decimal, bool) {
	u := d.int()
	switch {
	case scale == d.scale:
		return d, true
	case u.Sign() == 0:
		return Decimal{unscaled: new(big.Int), scale: scale}, true
	case scale < d.scale && d.scale-scale >= d.Precision():
		// A nonzero value has fewer trailing zeros than digits.
		return Decimal{}, false
	case scale > d.scale:
		f := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale-d.scale)), nil)
		return Decimal{unscaled: new(big.Int).Mul(u, f), scale: scale}, true
	default:
		f := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.scale-scale)), nil)
		q, r := new(big.Int).QuoRem(u, f, new(big.Int))
		if r.Sign() != 0 {
			return Decimal{}, false
		}
		return Decimal{unscaled: q, scale: scale}, true
	}
}

// Rat returns the exact rational value.
func (d Decimal) Rat() *big.Rat {
	r := new(big.Rat).SetInt(d.int())
	if d.scale == 0 {
		return r
	}
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(d.scale))), nil)
	if d.scale > 0 {
		return r.Quo(r, new(big.Rat).SetInt(p))
	}
	return r.Mul(r, new(big.Rat).SetInt(p))
}

// Cmp compares the numeric values of d and o, ignoring scale.
func (d Decimal) Cmp(o Decimal) int { return d.Rat().Cmp(o.Rat()) }

// Equal reports numeric equality, so 1.50 equals 1.5.
func (d Decimal) Equal(o Decimal) bool { return d.Cmp(o) == 0 }

// Float64 returns the nearest float64.
func (d Decimal) Float64() float64 {
	f, _ := d.Rat().Float64()
	return f
}

// TwosComplement returns the minimal big-endian two's-complement encoding of
// the unscaled value.
func (d Decimal) TwosComplement() []byte {
	u := d.int()
	switch u.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := u.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// -x in n bytes is 2^(8n) - x, with n the smallest width keeping the sign bit.
	n := (new(big.Int).Sub(new(big.Int).Neg(u), big.NewInt(1)).BitLen())/8 + 1
	v := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), uint(8*n)), u)
	b := v.Bytes()
	for len(b) < n {
		b = append([]byte{0xff}, b...)
	}
	return b
}

// FixedBytes returns the two's-complement encoding sign-extended to size bytes.
func (d Decimal) FixedBytes(size int) ([]byte, error) {
	b := d.TwosComplement()
	if len(b) > size {
		return nil, fmt.Errorf("logical: decimal %s needs %d bytes, fixed size is %d", d, len(b), size)
	}
	pad := byte(0)
	if d.Sign() < 0 {
		pad = 0xff
	}
	out := make([]byte, size)
	for i := 0; i < size-len(b); i++ {
		out[i] = pad
	}
	copy(out[size-len(b):], b)
	return out, nil
}

// String renders the plain decimal form, e.g. "19.565" or "-0.050".
func (d Decimal) String() string {
	u := d.int()
	if d.scale <= 0 {
		s := u.String()
		if u.Sign() != 0 && d.scale < 0 {
			s += strings.Repeat("0", -d.scale)
		}
		return s
	}
	digits := new(big.Int).Abs(u).String()
	if len(digits) <= d.scale {
		digits = strings.Repeat("0", d.scale-len(digits)+1) + digits
	}
	cut := len(digits) - d.scale
	s := digits[:cut] + "." + digits[cut:]
	if u.Sign() < 0 {
		s = "-" + s
	}
	return s
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
