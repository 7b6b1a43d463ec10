package relaxavro_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/schema"
)

// ---- Helpers ----

const tradeDef = `{"type":"record","name":"Trade","namespace":"bench","fields":[
	{"name":"id","type":{"type":"string","logicalType":"uuid"}},
	{"name":"price","type":{"type":"bytes","logicalType":"decimal","precision":12,"scale":4}},
	{"name":"qty","type":"long"},
	{"name":"day","type":{"type":"int","logicalType":"date"}},
	{"name":"at","type":{"type":"long","logicalType":"timestamp-micros"}},
	{"name":"venue","type":["null","string"],"default":null}]}`

var (
	tradeSchema = schema.MustParse(tradeDef)
	batchSchema = schema.MustParse(`{"type":"record","name":"Batch","namespace":"bench","fields":[
	{"name":"trades","type":{"type":"array","items":` + tradeDef + `}}]}`)
)

func canonicalTrade() []byte {
	return []byte(`{"id":"74074428-7c4d-4922-b8fd-7c32e9ae499b","price":"\u0000¼aN","qty":12,"day":14033,"at":1212488130123456,"venue":"XNAS"}`)
}

func relaxedTrade() []byte {
	return []byte(`{"id":"74074428-7c4d-4922-b8fd-7c32e9ae499b","price":"1234.5678","qty":"12","day":"2008-06-03","at":"2008-06-03T10:15:30.123456Z"}`)
}

// generateBatch returns {"trades":[...]} with n relaxed trades.
func generateBatch(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"trades":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"74074428-7c4d-4922-b8fd-7c32e9ae499b","price":"%d.25","qty":%d,"day":"2008-06-03","at":%d}`,
			i, i, 1212488130123456+int64(i))
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

func newDecoder(tb testing.TB, s *schema.Schema, mode relaxavro.Mode) *relaxavro.Decoder {
	tb.Helper()
	d, err := relaxavro.New(s, relaxavro.WithMode(mode))
	if err != nil {
		tb.Fatalf("decoder: %v", err)
	}
	return d
}

func benchDecode(b *testing.B, d *relaxavro.Decoder, data []byte) {
	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Decode(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Micro benchmarks (single record) ----

func Benchmark_Decode_Canonical_Strict(b *testing.B) {
	benchDecode(b, newDecoder(b, tradeSchema, relaxavro.ModeStrict), canonicalTrade())
}

func Benchmark_Decode_Canonical_Relaxed(b *testing.B) {
	benchDecode(b, newDecoder(b, tradeSchema, relaxavro.ModeRelaxed), canonicalTrade())
}

func Benchmark_Decode_Textual_Relaxed(b *testing.B) {
	benchDecode(b, newDecoder(b, tradeSchema, relaxavro.ModeRelaxed), relaxedTrade())
}

func Benchmark_Decode_Textual_Enhanced(b *testing.B) {
	benchDecode(b, newDecoder(b, tradeSchema, relaxavro.ModeEnhanced), relaxedTrade())
}

func Benchmark_Encode(b *testing.B) {
	d := newDecoder(b, tradeSchema, relaxavro.ModeRelaxed)
	rec, err := d.Decode(context.Background(), relaxedTrade())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Encode(rec); err != nil {
			b.Fatal(err)
		}
	}
}

// ---- Macro benchmarks (large arrays) ----

func Benchmark_Decode_Batch(b *testing.B) {
	for _, n := range []int{100, 10000} {
		data := generateBatch(n)
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			benchDecode(b, newDecoder(b, batchSchema, relaxavro.ModeRelaxed), data)
		})
	}
}

func Benchmark_Decode_Batch_NoNormalizer(b *testing.B) {
	data := generateBatch(1000)
	d, err := relaxavro.New(batchSchema, relaxavro.WithNormalizer(false))
	if err != nil {
		b.Fatal(err)
	}
	benchDecode(b, d, data)
}
