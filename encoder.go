package relaxavro

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/schema"
)

// encoder mirrors reader: it writes the strict JSON representation of a value
// tree. Union values are written unwrapped.
type encoder struct {
	registry *Registry
}

func (e *encoder) write(s *schema.Schema, v any, p *path) (*jsontree.Node, error) {
	n, err := e.writeNode(s, v, p)
	if err != nil {
		return nil, atPath(err, p)
	}
	return n, nil
}

func (e *encoder) writeNode(s *schema.Schema, v any, p *path) (*jsontree.Node, error) {
	if s.Logical != nil && v != nil {
		if _, ok := e.registry.Lookup(s.Logical.Name); ok {
			raw, err := e.registry.Unconvert(s, v)
			if err != nil {
				return nil, err
			}
			v = raw
		}
	}
	switch s.Type {
	case schema.Null:
		if v != nil {
			return nil, encodeTypeError(v, s)
		}
		return jsontree.Null(), nil
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		return jsontree.Bool(b), nil
	case schema.Int, schema.Long:
		if v == nil {
			return jsontree.Null(), nil
		}
		i, ok := asInt64(v)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		if s.Type == schema.Int && (i < minInt32 || i > maxInt32) {
			return nil, rangeError(i, "int", minInt32, maxInt32)
		}
		return jsontree.Int(i), nil
	case schema.Float:
		f, ok := v.(float32)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		return floatNode(float64(f), 32), nil
	case schema.Double:
		switch f := v.(type) {
		case float64:
			return floatNode(f, 64), nil
		case float32:
			return floatNode(float64(f), 64), nil
		}
		return nil, encodeTypeError(v, s)
	case schema.Bytes:
		if v == nil {
			return jsontree.Null(), nil
		}
		b, ok := v.([]byte)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		return jsontree.String(latin1String(b)), nil
	case schema.Fixed:
		if v == nil {
			return jsontree.Null(), nil
		}
		b, ok := v.([]byte)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		if len(b) != s.Size {
			return nil, errorf(CodeEncode, "fixed %s needs %d bytes, got %d", s.FullName(), s.Size, len(b))
		}
		return jsontree.String(latin1String(b)), nil
	case schema.String:
		str, ok := v.(string)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		return jsontree.String(str), nil
	case schema.Enum:
		var sym string
		switch t := v.(type) {
		case EnumSymbol:
			sym = string(t)
		case string:
			sym = t
		default:
			return nil, encodeTypeError(v, s)
		}
		if s.SymbolIndex(sym) < 0 {
			return nil, errorf(CodeEncode, "Unknown symbol in enum %s: %s", s.FullName(), sym)
		}
		return jsontree.String(sym), nil
	case schema.Record:
		rec, ok := v.(*Record)
		if !ok || rec == nil {
			return nil, encodeTypeError(v, s)
		}
		if rec.schema.FullName() != s.FullName() {
			return nil, errorf(CodeEncode, "record %s cannot be written as %s", rec.schema.FullName(), s.FullName())
		}
		out := jsontree.Object()
		for i, f := range s.Fields {
			fn, err := e.write(f.Schema, rec.values[i], p.field(f.Name))
			if err != nil {
				return nil, err
			}
			out.Set(f.Name, fn)
		}
		return out, nil
	case schema.Array:
		items, ok := v.([]any)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		out := jsontree.Array()
		out.Items = make([]*jsontree.Node, len(items))
		for i, it := range items {
			n, err := e.write(s.Items, it, p.index(i))
			if err != nil {
				return nil, err
			}
			out.Items[i] = n
		}
		return out, nil
	case schema.Map:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, encodeTypeError(v, s)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := jsontree.Object()
		for _, k := range keys {
			n, err := e.write(s.Values, m[k], p.field(k))
			if err != nil {
				return nil, err
			}
			out.Set(k, n)
		}
		return out, nil
	case schema.Union:
		for _, b := range s.Branches {
			if e.holds(b, v) {
				return e.writeNode(b, v, p)
			}
		}
		return nil, errorf(CodeEncode, "No branch of union %s holds %T", unionNames(s), v)
	}
	return nil, encodeTypeError(v, s)
}

// holds reports whether v is a value the reader produces for s. Logical
// types without a registered conversion hold the plain primitive.
func (e *encoder) holds(s *schema.Schema, v any) bool {
	plain := true
	if name := s.LogicalName(); name != "" {
		_, registered := e.registry.Lookup(name)
		plain = !registered
	}
	switch t := v.(type) {
	case nil:
		return s.Type == schema.Null
	case bool:
		return s.Type == schema.Boolean
	case int32:
		return s.Type == schema.Int && plain
	case int64:
		return s.Type == schema.Long && plain
	case float32:
		return s.Type == schema.Float
	case float64:
		return s.Type == schema.Double
	case []byte:
		if !plain {
			return false
		}
		return s.Type == schema.Bytes || (s.Type == schema.Fixed && len(t) == s.Size)
	case string:
		return s.Type == schema.String && plain
	case EnumSymbol:
		return s.Type == schema.Enum && s.SymbolIndex(string(t)) >= 0
	case *Record:
		return s.Type == schema.Record && t != nil && t.schema.FullName() == s.FullName()
	case []any:
		return s.Type == schema.Array
	case map[string]any:
		return s.Type == schema.Map
	case logical.Decimal:
		return s.LogicalName() == schema.LogicalDecimal
	case logical.Date:
		return s.LogicalName() == schema.LogicalDate
	case logical.TimeOfDay:
		n := s.LogicalName()
		return n == schema.LogicalTimeMillis || n == schema.LogicalTimeMicros
	case time.Time:
		n := s.LogicalName()
		return n == schema.LogicalTimestampMillis || n == schema.LogicalTimestampMicros
	case logical.LocalDateTime:
		n := s.LogicalName()
		return n == schema.LogicalLocalTimestampMillis || n == schema.LogicalLocalTimestampMicros
	case uuid.UUID:
		return s.LogicalName() == schema.LogicalUUID
	}
	return false
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	}
	return 0, false
}

func floatNode(f float64, bits int) *jsontree.Node {
	switch {
	case math.IsNaN(f):
		return jsontree.String("NaN")
	case math.IsInf(f, 1):
		return jsontree.String("Infinity")
	case math.IsInf(f, -1):
		return jsontree.String("-Infinity")
	}
	return jsontree.Number(strconv.FormatFloat(f, 'g', -1, bits))
}
