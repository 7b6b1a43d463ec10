package relaxavro

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/schema"
)

// builtinConversions returns one conversion per known logical type, with the
// representations mode accepts.
func builtinConversions(mode Mode) []Conversion {
	iso := logical.ISOLenient
	if mode != ModeRelaxed {
		iso = logical.ISOStrict
	}
	relaxed := mode != ModeStrict

	dec := Conversion{
		LogicalType: schema.LogicalDecimal,
		From: map[Representation]FromFunc{
			RepBytes: decimalFromTwosComplement,
			RepFixed: decimalFromTwosComplement,
		},
		To: decimalTo,
	}
	date := Conversion{
		LogicalType: schema.LogicalDate,
		From:        map[Representation]FromFunc{RepInt: dateFromInt},
		To:          dateTo,
	}
	timeMillis := Conversion{
		LogicalType: schema.LogicalTimeMillis,
		From:        map[Representation]FromFunc{RepInt: timeFromUnits(time.Millisecond)},
		To:          timeTo(time.Millisecond),
	}
	timeMicros := Conversion{
		LogicalType: schema.LogicalTimeMicros,
		From:        map[Representation]FromFunc{RepLong: timeFromUnits(time.Microsecond)},
		To:          timeTo(time.Microsecond),
	}
	tsMillis := Conversion{
		LogicalType: schema.LogicalTimestampMillis,
		From: map[Representation]FromFunc{RepLong: func(raw any, _ *schema.Schema) (any, error) {
			return time.UnixMilli(raw.(int64)).UTC(), nil
		}},
		To: timestampTo(time.Millisecond),
	}
	tsMicros := Conversion{
		LogicalType: schema.LogicalTimestampMicros,
		From: map[Representation]FromFunc{RepLong: func(raw any, _ *schema.Schema) (any, error) {
			return time.UnixMicro(raw.(int64)).UTC(), nil
		}},
		To: timestampTo(time.Microsecond),
	}
	localMillis := Conversion{
		LogicalType: schema.LogicalLocalTimestampMillis,
		From: map[Representation]FromFunc{RepLong: func(raw any, _ *schema.Schema) (any, error) {
			return logical.LocalFromEpochMillis(raw.(int64)), nil
		}},
		To: localTo(time.Millisecond),
	}
	localMicros := Conversion{
		LogicalType: schema.LogicalLocalTimestampMicros,
		From: map[Representation]FromFunc{RepLong: func(raw any, _ *schema.Schema) (any, error) {
			return logical.LocalFromEpochMicros(raw.(int64)), nil
		}},
		To: localTo(time.Microsecond),
	}
	id := Conversion{
		LogicalType: schema.LogicalUUID,
		From:        map[Representation]FromFunc{RepString: uuidFromString},
		To:          uuidTo,
	}

	if relaxed {
		dec.From[RepBytes] = decimalFromText
		dec.From[RepFixed] = decimalFromText
		dec.From[RepString] = decimalFromString
		dec.From[RepDouble] = decimalFromDouble
		date.From[RepString] = dateFromString(iso)
		timeMillis.From[RepString] = timeFromString(iso)
		timeMicros.From[RepString] = timeFromString(iso)
		tsMillis.From[RepString] = instantFromString(iso)
		tsMicros.From[RepString] = instantFromString(iso)
		localMillis.From[RepString] = localFromString(iso)
		localMicros.From[RepString] = localFromString(iso)
	}
	if mode == ModeEnhanced {
		dec.From[RepLong] = decimalFromScaledInt
	}
	return []Conversion{dec, date, timeMillis, timeMicros, tsMillis, tsMicros, localMillis, localMicros, id}
}

// decimal

// checkDecimal brings d to the declared scale without rounding and enforces
// the declared precision.
func checkDecimal(d logical.Decimal, s *schema.Schema) (logical.Decimal, error) {
	scale, precision := s.Logical.Scale, s.Logical.Precision
	from := d.Scale()
	if precision > 0 && from < scale && d.Sign() != 0 {
		// Scaling up appends scale-from zeros; check the result size first.
		if grown := int64(d.Precision()) + int64(scale) - int64(from); grown > int64(precision) {
			return logical.Decimal{}, errorf(CodeDecimalScale,
				"Cannot encode decimal with precision %d as max precision %d. This is after safely adjusting scale from %d to required %d",
				grown, precision, from, scale)
		}
	}
	if from != scale {
		r, ok := d.Rescale(scale)
		if !ok {
			return logical.Decimal{}, errorf(CodeDecimalScale,
				"Cannot encode decimal with scale %d as scale %d without rounding", from, scale)
		}
		d = r
	}
	if precision > 0 && d.Precision() > precision {
		if from != scale {
			return logical.Decimal{}, errorf(CodeDecimalScale,
				"Cannot encode decimal with precision %d as max precision %d. This is after safely adjusting scale from %d to required %d",
				d.Precision(), precision, from, scale)
		}
		return logical.Decimal{}, errorf(CodeDecimalScale,
			"Cannot encode decimal with precision %d as max precision %d", d.Precision(), precision)
	}
	return d, nil
}

func decimalFromTwosComplement(raw any, s *schema.Schema) (any, error) {
	return logical.DecimalFromTwosComplement(raw.([]byte), s.Logical.Scale), nil
}

// decimalFromText reads the bytes as ISO-8859-1 decimal text and falls back to
// the two's-complement reading when they are not a number.
func decimalFromText(raw any, s *schema.Schema) (any, error) {
	b := raw.([]byte)
	d, err := logical.ParseDecimal(latin1String(b))
	if err != nil {
		return logical.DecimalFromTwosComplement(b, s.Logical.Scale), nil
	}
	return checkDecimal(d, s)
}

func decimalFromString(raw any, s *schema.Schema) (any, error) {
	d, err := logical.ParseDecimal(raw.(string))
	if err != nil {
		return nil, newError(CodeSchemaMismatch, "Cannot read decimal from string "+raw.(string), err)
	}
	return checkDecimal(d, s)
}

func decimalFromDouble(raw any, s *schema.Schema) (any, error) {
	d, err := logical.DecimalFromFloat(raw.(float64))
	if err != nil {
		return nil, newError(CodeSchemaMismatch, err.Error(), err)
	}
	return checkDecimal(d, s)
}

func decimalFromScaledInt(raw any, s *schema.Schema) (any, error) {
	return checkDecimal(logical.DecimalFromInt64(raw.(int64), s.Logical.Scale), s)
}

func decimalTo(v any, s *schema.Schema) (any, error) {
	d, ok := v.(logical.Decimal)
	if !ok {
		return nil, encodeTypeError(v, s)
	}
	d, err := checkDecimal(d, s)
	if err != nil {
		return nil, err
	}
	if s.Type == schema.Fixed {
		b, err := d.FixedBytes(s.Size)
		if err != nil {
			return nil, newError(CodeEncode, err.Error(), err)
		}
		return b, nil
	}
	return d.TwosComplement(), nil
}

// date and time

func dateTimeError(err error) error {
	var pe *logical.ParseError
	if errors.As(err, &pe) {
		return newError(CodeDateTimeParse, pe.Error(), err)
	}
	return newError(CodeDateTimeParse, err.Error(), err)
}

func dateFromInt(raw any, _ *schema.Schema) (any, error) {
	return logical.DateFromEpochDays(int64(raw.(int32))), nil
}

func dateFromString(iso logical.Strictness) FromFunc {
	return func(raw any, _ *schema.Schema) (any, error) {
		d, err := logical.ParseDate(raw.(string), iso)
		if err != nil {
			return nil, dateTimeError(err)
		}
		return d, nil
	}
}

func dateTo(v any, s *schema.Schema) (any, error) {
	d, ok := v.(logical.Date)
	if !ok {
		return nil, encodeTypeError(v, s)
	}
	days := d.EpochDays()
	if days < minInt32 || days > maxInt32 {
		return nil, rangeError(days, "int", minInt32, maxInt32)
	}
	return int32(days), nil
}

func timeFromUnits(unit time.Duration) FromFunc {
	return func(raw any, _ *schema.Schema) (any, error) {
		var n int64
		switch v := raw.(type) {
		case int32:
			n = int64(v)
		case int64:
			n = v
		}
		t := logical.TimeOfDay(time.Duration(n) * unit)
		if n < 0 || n >= int64(logical.Day/unit) {
			return nil, errorf(CodeNumericRange, "Time of day %d out of range [0, %d)", n, int64(logical.Day/unit))
		}
		return t, nil
	}
}

func timeFromString(iso logical.Strictness) FromFunc {
	return func(raw any, _ *schema.Schema) (any, error) {
		t, err := logical.ParseTimeOfDay(raw.(string), iso)
		if err != nil {
			return nil, dateTimeError(err)
		}
		return t, nil
	}
}

func timeTo(unit time.Duration) ToFunc {
	return func(v any, s *schema.Schema) (any, error) {
		t, ok := v.(logical.TimeOfDay)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		if !t.Valid() {
			return nil, errorf(CodeNumericRange, "Time of day %s out of range", time.Duration(t))
		}
		if unit == time.Millisecond {
			return int32(t.Millis()), nil
		}
		return t.Micros(), nil
	}
}

func instantFromString(iso logical.Strictness) FromFunc {
	return func(raw any, _ *schema.Schema) (any, error) {
		t, err := logical.ParseInstant(raw.(string), iso)
		if err != nil {
			return nil, dateTimeError(err)
		}
		return t, nil
	}
}

func timestampTo(unit time.Duration) ToFunc {
	return func(v any, s *schema.Schema) (any, error) {
		t, ok := v.(time.Time)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		if unit == time.Millisecond {
			return t.UnixMilli(), nil
		}
		return t.UnixMicro(), nil
	}
}

func localFromString(iso logical.Strictness) FromFunc {
	return func(raw any, _ *schema.Schema) (any, error) {
		l, err := logical.ParseLocalDateTime(raw.(string), iso)
		if err != nil {
			return nil, dateTimeError(err)
		}
		return l, nil
	}
}

func localTo(unit time.Duration) ToFunc {
	return func(v any, s *schema.Schema) (any, error) {
		l, ok := v.(logical.LocalDateTime)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		if unit == time.Millisecond {
			return l.EpochMillis(), nil
		}
		return l.EpochMicros(), nil
	}
}

// uuid

func uuidFromString(raw any, _ *schema.Schema) (any, error) {
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return nil, newError(CodeSchemaMismatch, "Invalid UUID string: "+raw.(string), err)
	}
	return id, nil
}

func uuidTo(v any, s *schema.Schema) (any, error) {
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil, encodeTypeError(v, s)
	}
	return id.String(), nil
}

func encodeTypeError(v any, s *schema.Schema) error {
	return errorf(CodeEncode, "cannot encode %T as %s", v, s)
}
