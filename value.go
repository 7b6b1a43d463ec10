package relaxavro

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/schema"
)

// EnumSymbol is the decoded value of an enum node.
type EnumSymbol string

// Record is a decoded record: one value per schema field, in declaration
// order. Values are
//
//	nil                   null
//	bool                  boolean
//	int32, int64          int, long
//	float32, float64      float, double
//	[]byte                bytes, fixed
//	string                string
//	EnumSymbol            enum
//	*Record               record
//	[]any                 array
//	map[string]any        map
//	logical.Decimal       decimal
//	logical.Date          date
//	logical.TimeOfDay     time-millis, time-micros
//	time.Time             timestamp-millis, timestamp-micros (UTC)
//	logical.LocalDateTime local-timestamp-millis, local-timestamp-micros
//	uuid.UUID             uuid
type Record struct {
	schema *schema.Schema
	values []any
}

// NewRecord returns a record of s with every field set to nil.
func NewRecord(s *schema.Schema) *Record {
	return &Record{schema: s, values: make([]any, len(s.Fields))}
}

// Schema returns the record schema.
func (r *Record) Schema() *schema.Schema { return r.schema }

// Get returns the value of the named field, or nil when there is no such
// field.
func (r *Record) Get(name string) any {
	v, _ := r.Lookup(name)
	return v
}

// Lookup returns the value of the named field and whether the field exists.
func (r *Record) Lookup(name string) (any, bool) {
	for i, f := range r.schema.Fields {
		if f.Name == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// GetIndex returns the value at field position i.
func (r *Record) GetIndex(i int) any { return r.values[i] }

// Put sets the named field. It reports false when the schema has no such
// field.
func (r *Record) Put(name string, v any) bool {
	for i, f := range r.schema.Fields {
		if f.Name == name {
			r.values[i] = v
			return true
		}
	}
	return false
}

// Map returns the field values keyed by name. Nested records stay *Record.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, f := range r.schema.Fields {
		m[f.Name] = r.values[i]
	}
	return m
}

// Equal reports deep equality of two records of the same schema. Decimals
// compare numerically.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.schema.FullName() != o.schema.FullName() || len(r.values) != len(o.values) {
		return false
	}
	for i := range r.values {
		if !valueEqual(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *Record:
		y, ok := b.(*Record)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !valueEqual(v, w) {
				return false
			}
		}
		return true
	case logical.Decimal:
		y, ok := b.(logical.Decimal)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case uuid.UUID:
		y, ok := b.(uuid.UUID)
		return ok && x == y
	}
	return a == b
}
