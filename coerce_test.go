package relaxavro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/schema"
)

func TestStrictStrategy(t *testing.T) {
	s := StrategyFor(ModeStrict, nil)
	cases := []struct {
		kind PrimitiveKind
		node *jsontree.Node
		want Raw
		code string
	}{
		{PrimitiveInt, jsontree.Int(7), Raw{Rep: RepInt, Value: int32(7)}, ""},
		{PrimitiveLong, jsontree.Number("-9"), Raw{Rep: RepLong, Value: int64(-9)}, ""},
		{PrimitiveBytes, jsontree.String("ÿ"), Raw{Rep: RepBytes, Value: []byte{0xff}}, ""},
		{PrimitiveInt, jsontree.Number("2147483648"), Raw{}, CodeNumericRange},
		{PrimitiveInt, jsontree.Number("1.5"), Raw{}, CodeSchemaMismatch},
		{PrimitiveInt, jsontree.String("1"), Raw{}, CodeSchemaMismatch},
		{PrimitiveLong, jsontree.Null(), Raw{}, CodeSchemaMismatch},
		{PrimitiveLong, jsontree.Missing(), Raw{}, CodeSchemaMismatch},
		{PrimitiveBytes, jsontree.Int(1), Raw{}, CodeSchemaMismatch},
		{PrimitiveBytes, jsontree.String("€"), Raw{}, CodeSchemaMismatch},
	}
	for i, c := range cases {
		got, err := s.ReadPrimitive(c.kind, c.node)
		if c.code != "" {
			if !isCode(err, c.code) {
				t.Fatalf("case %d: expected %s, got %v", i, c.code, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Fatalf("case %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestRelaxedStrategy(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	relaxed := StrategyFor(ModeRelaxed, zap.New(core))
	enhanced := StrategyFor(ModeEnhanced, nil)

	cases := []struct {
		s    PrimitiveStrategy
		kind PrimitiveKind
		node *jsontree.Node
		want Raw
	}{
		{relaxed, PrimitiveInt, jsontree.String("2008-06-03"), Raw{Rep: RepString, Value: "2008-06-03"}},
		{relaxed, PrimitiveInt, jsontree.Null(), Raw{Rep: RepNull}},
		{relaxed, PrimitiveLong, jsontree.Missing(), Raw{Rep: RepNull}},
		{relaxed, PrimitiveInt, jsontree.Number("-3.99"), Raw{Rep: RepInt, Value: int32(-3)}},
		{relaxed, PrimitiveLong, jsontree.Number("1e3"), Raw{Rep: RepLong, Value: int64(1000)}},
		{relaxed, PrimitiveBytes, jsontree.Number("19565"), Raw{Rep: RepDouble, Value: float64(19565)}},
		{relaxed, PrimitiveBytes, jsontree.String("€"), Raw{Rep: RepString, Value: "€"}},
		{enhanced, PrimitiveBytes, jsontree.Number("19565"), Raw{Rep: RepLong, Value: int64(19565)}},
		{enhanced, PrimitiveBytes, jsontree.Number("19.565"), Raw{Rep: RepDouble, Value: 19.565}},
	}
	for i, c := range cases {
		got, err := c.s.ReadPrimitive(c.kind, c.node)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Fatalf("case %d (-want +got):\n%s", i, diff)
		}
	}
	if logs.FilterMessage("relaxed primitive fallback").Len() != 7 {
		t.Fatalf("expected one debug entry per relaxed fallback, got %d", logs.Len())
	}

	if _, err := relaxed.ReadPrimitive(PrimitiveInt, jsontree.Number("3e10")); !isCode(err, CodeNumericRange) {
		t.Fatalf("overflow after truncation: %v", err)
	}
	if _, err := relaxed.ReadPrimitive(PrimitiveInt, jsontree.Bool(true)); !isCode(err, CodeSchemaMismatch) {
		t.Fatalf("boolean token: %v", err)
	}
	if _, err := relaxed.ReadPrimitive(PrimitiveInt, jsontree.Object()); !isCode(err, CodeSchemaMismatch) {
		t.Fatalf("object token: %v", err)
	}
}

func TestRegistry_MergeAndConvert(t *testing.T) {
	dec := schema.NewPrimitive(schema.Bytes, &schema.LogicalType{Name: schema.LogicalDecimal, Precision: 5, Scale: 2})

	strict := NewRegistry(ModeStrict)
	if _, err := strict.Convert(dec, Raw{Rep: RepDouble, Value: 1.5}); !isCode(err, CodeSchemaMismatch) {
		t.Fatalf("strict decimal from double: %v", err)
	}
	v, err := strict.Convert(dec, Raw{Rep: RepBytes, Value: []byte{0x01, 0x2c}})
	if err != nil {
		t.Fatal(err)
	}
	if !v.(logical.Decimal).Equal(logical.DecimalFromInt64(300, 2)) {
		t.Fatalf("strict two's complement = %v", v)
	}
	if v, err := strict.Convert(dec, Raw{Rep: RepNull}); v != nil || err != nil {
		t.Fatalf("null short circuit: %v %v", v, err)
	}

	called := false
	custom := NewRegistry(ModeRelaxed, Conversion{
		LogicalType: schema.LogicalDecimal,
		From: map[Representation]FromFunc{RepDouble: func(any, *schema.Schema) (any, error) {
			called = true
			return logical.DecimalFromInt64(1, 0), nil
		}},
	})
	if _, err := custom.Convert(dec, Raw{Rep: RepDouble, Value: 2.0}); err != nil || !called {
		t.Fatalf("override not used: %v", err)
	}
	if _, err := custom.Convert(dec, Raw{Rep: RepBytes, Value: []byte("1.25")}); err != nil {
		t.Fatalf("built-in representation lost: %v", err)
	}
	if c, _ := custom.Lookup(schema.LogicalDecimal); c.To == nil {
		t.Fatalf("reverse function lost")
	}

	// Registries are independent of each other.
	if c, _ := NewRegistry(ModeRelaxed).Lookup(schema.LogicalDecimal); c.From[RepDouble] == nil {
		t.Fatalf("fresh registry lacks relaxed double conversion")
	}
	if _, ok := strict.Lookup("no-such-type"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestPathPointer(t *testing.T) {
	var root *path
	if got := root.pointer(); got != "/" {
		t.Fatalf("root = %q", got)
	}
	p := root.field("items").index(2).field("a/b~c")
	if got := p.pointer(); got != "/items/2/a~1b~0c" {
		t.Fatalf("pointer = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12.9", "12", true},
		{"-12.9", "-12", true},
		{"1.2E+3", "1200", true},
		{"5e-2", "0", true},
		{"0e999999999", "0", true},
		{"1e-999999999", "0", true},
		{"9223372036854775807", "9223372036854775807", true},
		{"1e19", "", false},
		{"1e999999999", "", false},
	}
	for _, c := range cases {
		d, err := logical.ParseDecimal(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		got, ok := truncate(d)
		if ok != c.ok {
			t.Fatalf("%s: ok = %v", c.in, ok)
		}
		if ok && got.String() != c.want {
			t.Fatalf("%s: got %s", c.in, got)
		}
	}
}
