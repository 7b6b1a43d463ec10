package logical

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in       string
		unscaled string
		scale    int
	}{
		{"19.565", "19565", 3},
		{"-0.050", "-50", 3},
		{"+12", "12", 0},
		{"1.2E+3", "12", -2},
		{"5e-2", "5", 2},
		{".5", "5", 1},
	}
	for _, c := range cases {
		d, err := ParseDecimal(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if d.Unscaled().String() != c.unscaled || d.Scale() != c.scale {
			t.Fatalf("%s: got %s scale %d", c.in, d.Unscaled(), d.Scale())
		}
	}
	for _, bad := range []string{"", "abc", "1.2.3", "1e", "--1", ".", "1e9999999999", "1e-1000000000"} {
		if _, err := ParseDecimal(bad); !errors.Is(err, ErrDecimalSyntax) {
			t.Fatalf("%q: expected syntax error, got %v", bad, err)
		}
	}
}

func TestDecimal_RescaleAndString(t *testing.T) {
	d, _ := ParseDecimal("19.5650")
	r, ok := d.Rescale(3)
	if !ok || r.String() != "19.565" {
		t.Fatalf("trailing zero should drop without rounding: %v %v", r, ok)
	}
	d, _ = ParseDecimal("19.5651")
	if _, ok := d.Rescale(3); ok {
		t.Fatalf("rescale that needs rounding must fail")
	}
	up, _ := DecimalFromInt64(5, 0).Rescale(2)
	if up.String() != "5.00" {
		t.Fatalf("got %s", up)
	}
	if s := DecimalFromInt64(-5, 3).String(); s != "-0.005" {
		t.Fatalf("got %s", s)
	}
	if !DecimalFromInt64(150, 2).Equal(DecimalFromInt64(15, 1)) {
		t.Fatalf("numeric equality should ignore scale")
	}
	if p := DecimalFromInt64(-19565, 3).Precision(); p != 5 {
		t.Fatalf("precision: %d", p)
	}
}

func TestDecimal_RescaleAcrossHugeScales(t *testing.T) {
	tiny, _ := ParseDecimal("1e-99999999")
	if _, ok := tiny.Rescale(3); ok {
		t.Fatalf("rescaling a tiny nonzero value must fail")
	}
	zero, _ := ParseDecimal("0e99999999")
	r, ok := zero.Rescale(3)
	if !ok || r.Sign() != 0 || r.Scale() != 3 {
		t.Fatalf("zero rescale: %v %v", r, ok)
	}
	huge, _ := ParseDecimal("12e99999999")
	if got := huge.IntegerDigits(); got != 100000001 {
		t.Fatalf("integer digits: %d", got)
	}
	if got := DecimalFromInt64(5, 3).IntegerDigits(); got != -2 {
		t.Fatalf("integer digits of 0.005: %d", got)
	}
}

func TestDecimal_TwosComplement(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 127, 128, -128, -129, 19565, -19565, 1 << 40} {
		d := DecimalFromInt64(v, 2)
		back := DecimalFromTwosComplement(d.TwosComplement(), 2)
		if back.Unscaled().Int64() != v {
			t.Fatalf("%d: round trip gave %s (bytes %x)", v, back.Unscaled(), d.TwosComplement())
		}
	}
	fixed, err := DecimalFromInt64(-2, 0).FixedBytes(4)
	if err != nil || len(fixed) != 4 || fixed[0] != 0xff || fixed[3] != 0xfe {
		t.Fatalf("fixed: %x %v", fixed, err)
	}
	if _, err := NewDecimal(new(big.Int).Lsh(big.NewInt(1), 40), 0).FixedBytes(2); err == nil {
		t.Fatalf("expected overflow for small fixed")
	}
}

func TestDecimalFromFloat(t *testing.T) {
	d, err := DecimalFromFloat(19.565)
	if err != nil || d.Unscaled().Int64() != 19565 || d.Scale() != 3 {
		t.Fatalf("got %v %v", d, err)
	}
}

func TestDate_EpochDays(t *testing.T) {
	d := DateFromEpochDays(14033)
	if d != (Date{2008, time.June, 3}) {
		t.Fatalf("got %v", d)
	}
	if d.EpochDays() != 14033 {
		t.Fatalf("epoch days: %d", d.EpochDays())
	}
	if got := DateFromEpochDays(13663).String(); got != "2007-05-30" {
		t.Fatalf("got %s", got)
	}
	if got := DateFromEpochDays(-1).String(); got != "1969-12-31" {
		t.Fatalf("got %s", got)
	}
	if DateFromEpochDays(-1).EpochDays() != -1 {
		t.Fatalf("negative epoch day round trip")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2008-06-03", ISOStrict)
	if err != nil || d.String() != "2008-06-03" {
		t.Fatalf("got %v %v", d, err)
	}
	_, err = ParseDate("Tue, 3 Jun 2008", ISOLenient)
	if err == nil || err.Error() != "Text 'Tue, 3 Jun 2008' could not be parsed at index 0" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDate("2008-06-03T10:00:00Z", ISOStrict); err == nil {
		t.Fatalf("strict date must reject a date-time")
	}
	if d, err := ParseDate("2008-06-03 10:00:00", ISOLenient); err != nil || d.Day != 3 {
		t.Fatalf("lenient date-time: %v %v", d, err)
	}
	if _, err := ParseDate("2008-02-30", ISOStrict); err == nil {
		t.Fatalf("expected invalid day")
	}
}

func TestParseDate_SignedYears(t *testing.T) {
	d, err := ParseDate("+999999999-01-01", ISOStrict)
	if err != nil || d.Year != 999999999 {
		t.Fatalf("got %v %v", d, err)
	}
	if d, err := ParseDate("-0044-03-15", ISOStrict); err != nil || d.Year != -44 {
		t.Fatalf("got %v %v", d, err)
	}
	_, err = ParseDate("+99999999999999999999-01-01", ISOStrict)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Index != 10 {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseInstant("+1000000000-01-01T00:00:00Z", ISOStrict); err == nil {
		t.Fatalf("ten digit year must be rejected")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("04:51:55.565970", ISOStrict)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tod.Micros() != 17515565970 {
		t.Fatalf("micros: %d", tod.Micros())
	}
	if tod.String() != "04:51:55.565970" {
		t.Fatalf("string: %s", tod)
	}
	_, err = ParseTimeOfDay("12 PM", ISOStrict)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Index != 2 {
		t.Fatalf("unexpected error: %v", err)
	}
	if err.Error() != "Text '12 PM' could not be parsed at index 2" {
		t.Fatalf("message: %v", err)
	}
	if s := NewTimeOfDay(12, 30, 0, 0).String(); s != "12:30" {
		t.Fatalf("short form: %s", s)
	}
}

func TestParseInstant(t *testing.T) {
	got, err := ParseInstant("2008-06-03T12:15:30.5+02:00", ISOStrict)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2008, 6, 3, 10, 15, 30, 500_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v", got)
	}
	if FormatInstant(got) != "2008-06-03T10:15:30.500Z" {
		t.Fatalf("format: %s", FormatInstant(got))
	}
	if _, err := ParseInstant("2008-06-03T10:15:30", ISOStrict); err == nil {
		t.Fatalf("strict instant needs an offset")
	}
	if got, err := ParseInstant("2008-06-03 10:15:30", ISOLenient); err != nil || got.Hour() != 10 {
		t.Fatalf("lenient: %v %v", got, err)
	}
}

func TestLocalDateTime(t *testing.T) {
	l, err := ParseLocalDateTime("2008-06-03T10:15:30.123", ISOStrict)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	back := LocalFromEpochMillis(l.EpochMillis())
	if back != l {
		t.Fatalf("epoch round trip: %v != %v", back, l)
	}
	if l.String() != "2008-06-03T10:15:30.123" {
		t.Fatalf("string: %s", l)
	}
	if _, err := ParseLocalDateTime("2008-06-03T10:15:30Z", ISOStrict); err == nil {
		t.Fatalf("strict local date-time must reject an offset")
	}
}
