package relaxavro

import (
	"math"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/logical"
)

const (
	minInt32 = math.MinInt32
	maxInt32 = math.MaxInt32
)

// PrimitiveStrategy reads the INT, LONG and BYTES slots of a schema walk.
// Implementations must be safe for concurrent use.
type PrimitiveStrategy interface {
	ReadPrimitive(kind PrimitiveKind, n *jsontree.Node) (Raw, error)
}

// StrategyFor returns the built-in strategy of mode. A nil logger disables
// fallback logging.
func StrategyFor(mode Mode, logger *zap.Logger) PrimitiveStrategy {
	if mode == ModeStrict {
		return strictStrategy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return relaxedStrategy{enhanced: mode == ModeEnhanced, logger: logger}
}

// strictStrategy accepts integer literals for INT and LONG and ISO-8859-1
// strings for BYTES.
type strictStrategy struct{}

func (strictStrategy) ReadPrimitive(kind PrimitiveKind, n *jsontree.Node) (Raw, error) {
	switch kind {
	case PrimitiveInt, PrimitiveLong:
		if n.IsMissing() || n.Kind != jsontree.KindNumber || !n.IsInteger() {
			return Raw{}, expectedError(kind, n)
		}
		return integerRaw(kind, n.Number)
	case PrimitiveBytes:
		if n.IsMissing() || n.Kind != jsontree.KindString {
			return Raw{}, expectedError(kind, n)
		}
		b, ok := latin1Bytes(n.String)
		if !ok {
			return Raw{}, errorf(CodeSchemaMismatch, "Expected bytes. Got string with characters outside ISO-8859-1")
		}
		return Raw{Rep: RepBytes, Value: b}, nil
	}
	return Raw{}, errorf(CodeSchemaMismatch, "unsupported primitive %s", kind)
}

// relaxedStrategy retries a strict mismatch with the raw token.
type relaxedStrategy struct {
	enhanced bool
	logger   *zap.Logger
}

func (s relaxedStrategy) ReadPrimitive(kind PrimitiveKind, n *jsontree.Node) (Raw, error) {
	raw, err := strictStrategy{}.ReadPrimitive(kind, n)
	if err == nil || !isCode(err, CodeSchemaMismatch) {
		return raw, err
	}
	if n.IsNullish() {
		s.debug(kind, n, RepNull)
		return Raw{Rep: RepNull}, nil
	}
	switch n.Kind {
	case jsontree.KindString:
		s.debug(kind, n, RepString)
		return Raw{Rep: RepString, Value: n.String}, nil
	case jsontree.KindNumber:
		raw, err := s.number(kind, n)
		if err != nil {
			return Raw{}, err
		}
		s.debug(kind, n, raw.Rep)
		return raw, nil
	}
	return Raw{}, err
}

func (s relaxedStrategy) number(kind PrimitiveKind, n *jsontree.Node) (Raw, error) {
	if kind == PrimitiveBytes {
		if s.enhanced && n.IsInteger() {
			return integerRaw(PrimitiveLong, n.Number)
		}
		f, err := strconv.ParseFloat(n.Number, 64)
		if err != nil {
			return Raw{}, errorf(CodeNumericRange, "Numeric value (%s) out of range of double", n.Number)
		}
		return Raw{Rep: RepDouble, Value: f}, nil
	}
	// A fractional INT or LONG token keeps its integer part.
	d, err := logical.ParseDecimal(n.Number)
	if err != nil {
		return Raw{}, newError(CodeSchemaMismatch, err.Error(), err)
	}
	return integerFromDecimal(kind, d, n.Number)
}

func (s relaxedStrategy) debug(kind PrimitiveKind, n *jsontree.Node, rep Representation) {
	s.logger.Debug("relaxed primitive fallback",
		zap.Stringer("primitive", kind),
		zap.Stringer("token", n.Kind),
		zap.Stringer("representation", rep),
	)
}

// maxIntegerDigits is the digit count of the widest int64.
const maxIntegerDigits = 19

// truncate drops the fraction of d, rounding toward zero. It reports false
// when the integer part has more digits than any int64, without expanding it.
func truncate(d logical.Decimal) (*big.Int, bool) {
	if d.Sign() == 0 {
		return new(big.Int), true
	}
	if d.IntegerDigits() > maxIntegerDigits {
		return nil, false
	}
	if d.IntegerDigits() <= 0 {
		return new(big.Int), true
	}
	if d.Scale() <= 0 {
		r, _ := d.Rescale(0)
		return r.Unscaled(), true
	}
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale())), nil)
	return new(big.Int).Quo(d.Unscaled(), p), true
}

// integerFromDecimal truncates d into an int32 or int64. Range errors quote
// lit, the text the value was read from.
func integerFromDecimal(kind PrimitiveKind, d logical.Decimal, lit string) (Raw, error) {
	if v, ok := truncate(d); ok {
		if raw, err := integerRaw(kind, v.String()); err == nil {
			return raw, nil
		}
	}
	return Raw{}, kindRangeError(kind, lit)
}

// integerRaw parses an integer literal into int32 or int64.
func integerRaw(kind PrimitiveKind, lit string) (Raw, error) {
	v, err := strconv.ParseInt(lit, 10, 64)
	if kind == PrimitiveInt {
		if err != nil || v < minInt32 || v > maxInt32 {
			return Raw{}, kindRangeError(kind, lit)
		}
		return Raw{Rep: RepInt, Value: int32(v)}, nil
	}
	if err != nil {
		return Raw{}, kindRangeError(kind, lit)
	}
	return Raw{Rep: RepLong, Value: v}, nil
}

func kindRangeError(kind PrimitiveKind, lit string) error {
	if kind == PrimitiveInt {
		return rangeError(lit, "int", minInt32, maxInt32)
	}
	return rangeError(lit, "long", math.MinInt64, math.MaxInt64)
}

func rangeError(v any, typ string, lo, hi int64) error {
	return errorf(CodeNumericRange, "Numeric value (%v) out of range of %s (%d - %d)", v, typ, lo, hi)
}

func expectedError(kind PrimitiveKind, n *jsontree.Node) error {
	got := "missing"
	switch {
	case n.IsMissing():
	case n.Kind == jsontree.KindNumber && !n.IsInteger():
		got = "fractional number"
	default:
		got = n.Kind.String()
	}
	return errorf(CodeSchemaMismatch, "Expected %s. Got %s", kind, got)
}

// latin1Bytes maps each rune to one byte, failing on runes above U+00FF.
func latin1Bytes(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, false
		}
		out = append(out, byte(r))
	}
	return out, true
}

func latin1String(b []byte) string {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}
