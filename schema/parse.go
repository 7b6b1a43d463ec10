package schema

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrInvalidSchema is wrapped by every schema description error.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Parse reads an Avro JSON schema description.
func Parse(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("schema: decoding JSON: %w", err)
	}
	return FromValue(v)
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level schema literals.
func MustParse(text string) *Schema {
	s, err := Parse([]byte(text))
	if err != nil {
		panic(err)
	}
	return s
}

// FromValue builds a schema from an already-decoded description tree
// (string, []any, map[string]any leaves as produced by JSON or YAML decoders).
func FromValue(v any) (*Schema, error) {
	p := &parser{names: map[string]*Schema{}}
	return p.parse(v, "")
}

type parser struct {
	names map[string]*Schema
}

func invalidf(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, a...))
}

var primitiveTypes = map[string]Type{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

func (p *parser) parse(v any, namespace string) (*Schema, error) {
	switch t := v.(type) {
	case string:
		return p.resolveName(t, namespace)
	case []any:
		branches := make([]*Schema, 0, len(t))
		for i, b := range t {
			s, err := p.parse(b, namespace)
			if err != nil {
				return nil, fmt.Errorf("union branch %d: %w", i, err)
			}
			if s.Type == Union {
				return nil, invalidf("union branch %d: nested unions are not allowed", i)
			}
			branches = append(branches, s)
		}
		if err := checkUnionBranches(branches); err != nil {
			return nil, err
		}
		return NewUnion(branches...), nil
	case map[string]any:
		return p.parseObject(t, namespace)
	default:
		return nil, invalidf("unexpected schema node %T", v)
	}
}

func (p *parser) resolveName(name, namespace string) (*Schema, error) {
	if t, ok := primitiveTypes[name]; ok {
		return NewPrimitive(t, nil), nil
	}
	if s, ok := p.names[qualify(name, namespace)]; ok {
		return s, nil
	}
	if s, ok := p.names[name]; ok {
		return s, nil
	}
	return nil, invalidf("unknown type %q", name)
}

func (p *parser) parseObject(m map[string]any, namespace string) (*Schema, error) {
	rawType, ok := m["type"]
	if !ok {
		return nil, invalidf("missing \"type\" attribute")
	}
	typeName, isString := rawType.(string)
	if !isString {
		// {"type": {...}} or {"type": [...]} wraps another schema.
		return p.parse(rawType, namespace)
	}
	switch typeName {
	case "record", "error":
		return p.parseRecord(m, namespace)
	case "enum":
		return p.parseEnum(m, namespace)
	case "fixed":
		return p.parseFixed(m, namespace)
	case "array":
		items, ok := m["items"]
		if !ok {
			return nil, invalidf("array without \"items\"")
		}
		is, err := p.parse(items, namespace)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		return NewArray(is), nil
	case "map":
		values, ok := m["values"]
		if !ok {
			return nil, invalidf("map without \"values\"")
		}
		vs, err := p.parse(values, namespace)
		if err != nil {
			return nil, fmt.Errorf("map values: %w", err)
		}
		return NewMap(vs), nil
	}
	if t, ok := primitiveTypes[typeName]; ok {
		return NewPrimitive(t, parseLogical(m, t)), nil
	}
	s, err := p.resolveName(typeName, namespace)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) define(s *Schema, m map[string]any, namespace string) error {
	name, _ := m["name"].(string)
	if name == "" {
		return invalidf("%s without a name", s.Type)
	}
	if ns, ok := m["namespace"].(string); ok {
		namespace = ns
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		namespace, name = name[:i], name[i+1:]
	}
	s.Name, s.Namespace = name, namespace
	s.Doc, _ = m["doc"].(string)
	s.Aliases = stringList(m["aliases"])
	full := s.FullName()
	if _, dup := p.names[full]; dup {
		return invalidf("type %q defined twice", full)
	}
	if _, prim := primitiveTypes[full]; prim {
		return invalidf("type name %q shadows a primitive", full)
	}
	p.names[full] = s
	return nil
}

func (p *parser) parseRecord(m map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: Record}
	if err := p.define(s, m, namespace); err != nil {
		return nil, err
	}
	rawFields, ok := m["fields"].([]any)
	if !ok {
		return nil, invalidf("record %q without \"fields\" list", s.FullName())
	}
	seen := make(map[string]bool, len(rawFields))
	for i, rf := range rawFields {
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, invalidf("record %q field %d is not an object", s.FullName(), i)
		}
		name, _ := fm["name"].(string)
		if name == "" {
			return nil, invalidf("record %q field %d without a name", s.FullName(), i)
		}
		if seen[name] {
			return nil, invalidf("record %q declares field %q twice", s.FullName(), name)
		}
		seen[name] = true
		fs, err := p.parse(fm["type"], s.Namespace)
		if err != nil {
			return nil, fmt.Errorf("record %q field %q: %w", s.FullName(), name, err)
		}
		f := &Field{Name: name, Schema: fs, Aliases: stringList(fm["aliases"])}
		f.Doc, _ = fm["doc"].(string)
		if d, ok := fm["default"]; ok {
			f.Default, f.HasDefault = d, true
		}
		s.Fields = append(s.Fields, f)
	}
	s.indexFields()
	return s, nil
}

func (p *parser) parseEnum(m map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: Enum}
	if err := p.define(s, m, namespace); err != nil {
		return nil, err
	}
	raw, ok := m["symbols"].([]any)
	if !ok {
		return nil, invalidf("enum %q without \"symbols\" list", s.FullName())
	}
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		sym, ok := r.(string)
		if !ok || sym == "" {
			return nil, invalidf("enum %q has an invalid symbol %v", s.FullName(), r)
		}
		if seen[sym] {
			return nil, invalidf("enum %q declares symbol %q twice", s.FullName(), sym)
		}
		seen[sym] = true
		s.Symbols = append(s.Symbols, sym)
	}
	return s, nil
}

func (p *parser) parseFixed(m map[string]any, namespace string) (*Schema, error) {
	s := &Schema{Type: Fixed}
	if err := p.define(s, m, namespace); err != nil {
		return nil, err
	}
	size, ok := toInt(m["size"])
	if !ok || size < 0 {
		return nil, invalidf("fixed %q has an invalid size", s.FullName())
	}
	s.Size = size
	s.Logical = parseLogical(m, Fixed)
	if s.Logical != nil && s.Logical.Name == LogicalDecimal {
		if maxFixedPrecision(size) < s.Logical.Precision {
			s.Logical = nil
		}
	}
	return s, nil
}

// parseLogical returns the logical type attached to a node of type t. Invalid
// or unknown annotations on a known logical name are ignored and the node
// decodes as its underlying type; unknown names are kept so callers can
// register conversions for them.
func parseLogical(m map[string]any, t Type) *LogicalType {
	name, _ := m["logicalType"].(string)
	if name == "" {
		return nil
	}
	lt := &LogicalType{Name: name}
	switch name {
	case LogicalDecimal:
		if t != Bytes && t != Fixed {
			return nil
		}
		precision, ok := toInt(m["precision"])
		if !ok || precision <= 0 {
			return nil
		}
		scale := 0
		if raw, present := m["scale"]; present {
			if scale, ok = toInt(raw); !ok || scale < 0 || scale > precision {
				return nil
			}
		}
		lt.Precision, lt.Scale = precision, scale
	case LogicalDate, LogicalTimeMillis:
		if t != Int {
			return nil
		}
	case LogicalTimeMicros, LogicalTimestampMillis, LogicalTimestampMicros,
		LogicalLocalTimestampMillis, LogicalLocalTimestampMicros:
		if t != Long {
			return nil
		}
	case LogicalUUID:
		if t != String {
			return nil
		}
	}
	return lt
}

// maxFixedPrecision is the number of base-10 digits a two's-complement value
// of size bytes can always hold.
func maxFixedPrecision(size int) int {
	if size == 0 {
		return 0
	}
	return int(math.Floor(math.Log10(2) * float64(8*size-1)))
}

func checkUnionBranches(branches []*Schema) error {
	seen := make(map[string]bool, len(branches))
	for _, b := range branches {
		key := b.TypeName()
		if seen[key] {
			return invalidf("union declares %q twice", key)
		}
		seen[key] = true
	}
	return nil
}

func qualify(name, namespace string) string {
	if namespace == "" || strings.ContainsRune(name, '.') {
		return name
	}
	return namespace + "." + name
}

func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(string(n))
		return i, err == nil
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
