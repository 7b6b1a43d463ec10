package relaxavro

// Package relaxavro provides:
//
// - Schema-directed decoding of loosely typed JSON into Avro-style records
// - Strict, relaxed and enhanced handling of the INT, LONG and BYTES slots
// - A per-decoder table of logical type conversions (decimal, date, time, timestamp, uuid)
// - A reverse encoder that always writes the canonical JSON representation
// - A stable error model via DecodeError (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; the schema model lives in schema/,
//   the ordered JSON tree in jsontree/ and logical values in logical/.
// - Decoders are immutable after New and safe for concurrent use.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s, err := schema.Parse(avsc)
//  d, err := relaxavro.New(s, relaxavro.WithMode(relaxavro.ModeRelaxed))
//  rec, err := d.Decode(ctx, []byte(`{"date":"2008-06-03","amount":"19.565"}`))
//
//  canonical, err := d.Encode(rec)
//
