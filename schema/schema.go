// Package schema models the record schema tree consumed by the decoder and
// parses it from its Avro JSON (.avsc) or YAML description.
package schema

import "strings"

// Type enumerates schema node kinds.
type Type int

const (
	Null Type = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	Record
	Enum
	Array
	Map
	Union
	Fixed
)

var typeNames = [...]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	Bytes:   "bytes",
	String:  "string",
	Record:  "record",
	Enum:    "enum",
	Array:   "array",
	Map:     "map",
	Union:   "union",
	Fixed:   "fixed",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t Type) IsPrimitive() bool { return t <= String }

// Logical type names understood by the built-in conversions.
const (
	LogicalDecimal              = "decimal"
	LogicalDate                 = "date"
	LogicalTimeMillis           = "time-millis"
	LogicalTimeMicros           = "time-micros"
	LogicalTimestampMillis      = "timestamp-millis"
	LogicalTimestampMicros      = "timestamp-micros"
	LogicalLocalTimestampMillis = "local-timestamp-millis"
	LogicalLocalTimestampMicros = "local-timestamp-micros"
	LogicalUUID                 = "uuid"
)

// LogicalType refines a primitive or fixed node.
type LogicalType struct {
	Name      string
	Precision int // decimal only
	Scale     int // decimal only
}

// Field is a named record member.
type Field struct {
	Name    string
	Doc     string
	Schema  *Schema
	Aliases []string
	// Default holds the JSON default value as produced by the parser
	// (nil, bool, json.Number/number, string, []any, map[string]any).
	Default    any
	HasDefault bool
}

// Schema is an immutable node of the type tree. Named types (record, enum,
// fixed) may be referenced from several places, including recursively.
type Schema struct {
	Type    Type
	Logical *LogicalType

	Name      string
	Namespace string
	Doc       string
	Aliases   []string

	Fields   []*Field  // record
	Symbols  []string  // enum
	Items    *Schema   // array
	Values   *Schema   // map
	Branches []*Schema // union
	Size     int       // fixed

	fieldIndex map[string]int
}

// FullName returns namespace.name for named types.
func (s *Schema) FullName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// LogicalName returns the logical type name or "".
func (s *Schema) LogicalName() string {
	if s == nil || s.Logical == nil {
		return ""
	}
	return s.Logical.Name
}

// Field returns the record field with the given name.
func (s *Schema) Field(name string) (*Field, bool) {
	if s.fieldIndex != nil {
		i, ok := s.fieldIndex[name]
		if !ok {
			return nil, false
		}
		return s.Fields[i], true
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// SymbolIndex returns the position of sym in an enum's symbol list, or -1.
func (s *Schema) SymbolIndex(sym string) int {
	for i, v := range s.Symbols {
		if v == sym {
			return i
		}
	}
	return -1
}

// Nullable reports whether a null value satisfies the node: the null type or a
// union with a null branch.
func (s *Schema) Nullable() bool {
	switch s.Type {
	case Null:
		return true
	case Union:
		for _, b := range s.Branches {
			if b.Type == Null {
				return true
			}
		}
	}
	return false
}

// TypeName is the name a union uses to refer to the branch: the full name for
// named types, the type keyword otherwise.
func (s *Schema) TypeName() string {
	switch s.Type {
	case Record, Enum, Fixed:
		return s.FullName()
	}
	return s.Type.String()
}

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString(s.TypeName())
	if s.Logical != nil {
		b.WriteString("<")
		b.WriteString(s.Logical.Name)
		b.WriteString(">")
	}
	return b.String()
}

// NewPrimitive returns a primitive node, optionally carrying a logical type.
func NewPrimitive(t Type, logical *LogicalType) *Schema {
	return &Schema{Type: t, Logical: logical}
}

// NewRecord builds a record node and indexes its fields.
func NewRecord(name, namespace string, fields ...*Field) *Schema {
	s := &Schema{Type: Record, Name: name, Namespace: namespace, Fields: fields}
	s.indexFields()
	return s
}

// NewArray returns an array node.
func NewArray(items *Schema) *Schema { return &Schema{Type: Array, Items: items} }

// NewMap returns a map node.
func NewMap(values *Schema) *Schema { return &Schema{Type: Map, Values: values} }

// NewUnion returns a union node.
func NewUnion(branches ...*Schema) *Schema { return &Schema{Type: Union, Branches: branches} }

// NewEnum returns an enum node.
func NewEnum(name, namespace string, symbols ...string) *Schema {
	return &Schema{Type: Enum, Name: name, Namespace: namespace, Symbols: symbols}
}

// NewFixed returns a fixed node.
func NewFixed(name, namespace string, size int, logical *LogicalType) *Schema {
	return &Schema{Type: Fixed, Name: name, Namespace: namespace, Size: size, Logical: logical}
}

func (s *Schema) indexFields() {
	s.fieldIndex = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		s.fieldIndex[f.Name] = i
	}
}
