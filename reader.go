package relaxavro

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/schema"
)

// reader walks a schema in lock-step with a JSON tree. It holds no per-call
// state; the path is threaded through the recursion.
type reader struct {
	strategy PrimitiveStrategy
	registry *Registry
	relaxed  bool
}

func (r *reader) read(s *schema.Schema, n *jsontree.Node, p *path) (any, error) {
	v, err := r.readNode(s, n, p)
	if err != nil {
		return nil, atPath(err, p)
	}
	return v, nil
}

func (r *reader) readNode(s *schema.Schema, n *jsontree.Node, p *path) (any, error) {
	switch s.Type {
	case schema.Null:
		if n.IsNullish() {
			return nil, nil
		}
		return nil, mismatch(s, n)
	case schema.Boolean:
		if n.IsMissing() || n.Kind != jsontree.KindBool {
			return nil, mismatch(s, n)
		}
		return n.Bool, nil
	case schema.Int:
		return r.primitive(s, PrimitiveInt, n)
	case schema.Long:
		return r.primitive(s, PrimitiveLong, n)
	case schema.Bytes:
		return r.primitive(s, PrimitiveBytes, n)
	case schema.Float:
		f, err := readFloat(s, n, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case schema.Double:
		return readFloat(s, n, 64)
	case schema.String:
		if n.IsMissing() || n.Kind != jsontree.KindString {
			return nil, mismatch(s, n)
		}
		return r.convert(s, Raw{Rep: RepString, Value: n.String})
	case schema.Enum:
		if n.IsMissing() || n.Kind != jsontree.KindString {
			return nil, mismatch(s, n)
		}
		if s.SymbolIndex(n.String) < 0 {
			return nil, errorf(CodeSchemaMismatch, "Unknown symbol in enum %s: %s", s.FullName(), n.String)
		}
		return EnumSymbol(n.String), nil
	case schema.Fixed:
		return r.fixed(s, n)
	case schema.Record:
		return r.record(s, n, p)
	case schema.Array:
		if n.IsMissing() || n.Kind != jsontree.KindArray {
			return nil, mismatch(s, n)
		}
		out := make([]any, len(n.Items))
		for i, it := range n.Items {
			v, err := r.read(s.Items, it, p.index(i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case schema.Map:
		if n.IsMissing() || n.Kind != jsontree.KindObject {
			return nil, mismatch(s, n)
		}
		out := make(map[string]any, n.Len())
		for _, k := range n.Keys() {
			v, err := r.read(s.Values, n.Get(k), p.field(k))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case schema.Union:
		_, b := selectBranch(s, n, r.relaxed)
		if b == nil {
			return nil, errorf(CodeSchemaMismatch, "No branch of union %s matches %s", unionNames(s), tokenName(n))
		}
		return r.readNode(b, n, p)
	}
	return nil, errorf(CodeSchemaMismatch, "unsupported schema type %s", s.Type)
}

func (r *reader) record(s *schema.Schema, n *jsontree.Node, p *path) (any, error) {
	if n.IsMissing() || n.Kind != jsontree.KindObject {
		return nil, mismatch(s, n)
	}
	rec := NewRecord(s)
	for i, f := range s.Fields {
		fp := p.field(f.Name)
		child := n.Get(f.Name)
		var (
			v   any
			err error
		)
		switch {
		case !child.IsMissing():
			v, err = r.read(f.Schema, child, fp)
		case f.HasDefault:
			v, err = r.fieldDefault(f, fp)
		case f.Schema.Nullable():
		default:
			err = &DecodeError{Path: fp.pointer(), Code: CodeMissingRequired,
				Message: "Field " + f.Name + " of " + s.FullName() + " is required"}
		}
		if err != nil {
			return nil, err
		}
		rec.values[i] = v
	}
	return rec, nil
}

// fieldDefault decodes a field's declared default. Union defaults apply to
// the first branch.
func (r *reader) fieldDefault(f *schema.Field, p *path) (any, error) {
	dn, err := jsontree.FromValue(f.Default)
	if err != nil {
		return nil, newError(CodeSchemaMismatch, "invalid default for field "+f.Name, err)
	}
	fs := f.Schema
	if fs.Type == schema.Union && len(fs.Branches) > 0 {
		fs = fs.Branches[0]
	}
	return r.read(fs, dn, p)
}

func (r *reader) primitive(s *schema.Schema, kind PrimitiveKind, n *jsontree.Node) (any, error) {
	raw, err := r.strategy.ReadPrimitive(kind, n)
	if err != nil {
		return nil, err
	}
	return r.convert(s, raw)
}

// convert hands raw to the logical conversion of s, or finishes it as the
// plain primitive when s has no registered logical type.
func (r *reader) convert(s *schema.Schema, raw Raw) (any, error) {
	if name := s.LogicalName(); name != "" {
		if _, ok := r.registry.Lookup(name); ok {
			return r.registry.Convert(s, raw)
		}
	}
	return plainValue(s, raw)
}

func plainValue(s *schema.Schema, raw Raw) (any, error) {
	switch raw.Rep {
	case RepNull:
		return nil, nil
	case RepString:
		str := raw.Value.(string)
		switch s.Type {
		case schema.String:
			return str, nil
		case schema.Int, schema.Long:
			kind := PrimitiveInt
			if s.Type == schema.Long {
				kind = PrimitiveLong
			}
			d, err := logical.ParseDecimal(strings.TrimSpace(str))
			if err != nil {
				return nil, errorf(CodeSchemaMismatch, "Expected %s. Got string %q", s.Type, str)
			}
			v, err := integerFromDecimal(kind, d, str)
			if err != nil {
				return nil, err
			}
			return v.Value, nil
		case schema.Bytes:
			b, ok := latin1Bytes(str)
			if !ok {
				return nil, errorf(CodeSchemaMismatch, "Expected bytes. Got string with characters outside ISO-8859-1")
			}
			return b, nil
		}
	case RepInt:
		if s.Type == schema.Int {
			return raw.Value, nil
		}
	case RepLong:
		if s.Type == schema.Long {
			return raw.Value, nil
		}
	case RepBytes, RepFixed:
		if s.Type == schema.Bytes || s.Type == schema.Fixed {
			return raw.Value, nil
		}
	}
	return nil, errorf(CodeSchemaMismatch, "Expected %s. Got %s value", s.Type, raw.Rep)
}

func (r *reader) fixed(s *schema.Schema, n *jsontree.Node) (any, error) {
	if r.relaxed && s.LogicalName() == schema.LogicalDecimal && (n.IsNullish() || n.Kind == jsontree.KindNumber) {
		return r.primitive(s, PrimitiveBytes, n)
	}
	if n.IsMissing() || n.Kind != jsontree.KindString {
		return nil, mismatch(s, n)
	}
	b, ok := latin1Bytes(n.String)
	if !ok {
		if r.relaxed && s.LogicalName() == schema.LogicalDecimal {
			return r.convert(s, Raw{Rep: RepString, Value: n.String})
		}
		return nil, errorf(CodeSchemaMismatch, "Expected fixed. Got string with characters outside ISO-8859-1")
	}
	if len(b) != s.Size {
		if r.relaxed && s.LogicalName() == schema.LogicalDecimal {
			return r.convert(s, Raw{Rep: RepString, Value: n.String})
		}
		return nil, errorf(CodeSchemaMismatch, "Expected fixed length %d, but got %d", s.Size, len(b))
	}
	return r.convert(s, Raw{Rep: RepFixed, Value: b})
}

func readFloat(s *schema.Schema, n *jsontree.Node, bits int) (float64, error) {
	if n.IsMissing() {
		return 0, mismatch(s, n)
	}
	switch n.Kind {
	case jsontree.KindNumber:
		f, err := strconv.ParseFloat(n.Number, bits)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, errorf(CodeNumericRange, "Numeric value (%s) out of range of %s", n.Number, s.Type)
			}
			return 0, newError(CodeSchemaMismatch, err.Error(), err)
		}
		return f, nil
	case jsontree.KindString:
		switch n.String {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return 0, mismatch(s, n)
}

func mismatch(s *schema.Schema, n *jsontree.Node) error {
	return errorf(CodeSchemaMismatch, "Expected %s. Got %s", s, tokenName(n))
}

func tokenName(n *jsontree.Node) string {
	if n.IsMissing() {
		return "missing"
	}
	return n.Kind.String()
}

func unionNames(s *schema.Schema) string {
	names := make([]string, len(s.Branches))
	for i, b := range s.Branches {
		names[i] = b.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
