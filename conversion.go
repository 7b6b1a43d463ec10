package relaxavro

import (
	"sort"

	"github.com/reoring/relaxavro/schema"
)

// FromFunc turns a raw primitive into the canonical value of a logical type.
// s is the schema node carrying the logical type.
type FromFunc func(raw any, s *schema.Schema) (any, error)

// ToFunc turns a canonical logical value back into the raw primitive of the
// strict representation (int32, int64, []byte or string).
type ToFunc func(v any, s *schema.Schema) (any, error)

// Conversion binds one logical type name to the representations it accepts.
// Conversions must be pure: no I/O and no shared mutable state.
type Conversion struct {
	LogicalType string
	From        map[Representation]FromFunc
	To          ToFunc
}

// Registry is the immutable logical-type table of one decoder.
type Registry struct {
	mode  Mode
	table map[string]Conversion
}

// NewRegistry assembles the built-in conversions for mode and layers the
// additions on top. An addition for an already known logical type adds or
// replaces individual representations and, when To is set, the reverse
// function. The inputs are copied.
func NewRegistry(mode Mode, additions ...Conversion) *Registry {
	r := &Registry{mode: mode, table: map[string]Conversion{}}
	for _, c := range builtinConversions(mode) {
		r.add(c)
	}
	for _, c := range additions {
		r.add(c)
	}
	return r
}

func (r *Registry) add(c Conversion) {
	cur, ok := r.table[c.LogicalType]
	if !ok {
		cur = Conversion{LogicalType: c.LogicalType}
	}
	from := make(map[Representation]FromFunc, len(cur.From)+len(c.From))
	for k, f := range cur.From {
		from[k] = f
	}
	for k, f := range c.From {
		if f != nil {
			from[k] = f
		}
	}
	cur.From = from
	if c.To != nil {
		cur.To = c.To
	}
	r.table[c.LogicalType] = cur
}

// Mode returns the mode the built-in conversions were selected for.
func (r *Registry) Mode() Mode { return r.mode }

// Lookup returns the conversion for a logical type name.
func (r *Registry) Lookup(name string) (Conversion, bool) {
	c, ok := r.table[name]
	return c, ok
}

// LogicalTypes lists the registered logical type names in sorted order.
func (r *Registry) LogicalTypes() []string {
	out := make([]string, 0, len(r.table))
	for k := range r.table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Convert maps raw to the canonical value of s's logical type. A null raw
// value yields nil without consulting the table; a schema without a known
// logical type passes raw through.
func (r *Registry) Convert(s *schema.Schema, raw Raw) (any, error) {
	if raw.Rep == RepNull || raw.Value == nil {
		return nil, nil
	}
	name := s.LogicalName()
	c, ok := r.table[name]
	if !ok {
		return raw.Value, nil
	}
	f, ok := c.From[raw.Rep]
	if !ok {
		return nil, errorf(CodeSchemaMismatch, "logical type %s does not accept a %s value", name, raw.Rep)
	}
	return f(raw.Value, s)
}

// Unconvert maps a canonical logical value back to its strict raw primitive.
func (r *Registry) Unconvert(s *schema.Schema, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	c, ok := r.table[s.LogicalName()]
	if !ok || c.To == nil {
		return v, nil
	}
	return c.To(v, s)
}
