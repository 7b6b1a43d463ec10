package relaxavro

import (
	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/schema"
)

// Normalize returns a copy of n aligned to s. Record objects are rebuilt with
// their members in field declaration order; members the schema does not
// declare are dropped and absent fields become the Missing marker. Object and
// array children are normalized against their own schema: record fields,
// array items, map values and the union branch matching the child's shape.
// Scalars are copied as is and any node whose shape does not fit s is
// returned as a plain copy, leaving the mismatch to the reader.
func Normalize(n *jsontree.Node, s *schema.Schema) *jsontree.Node {
	if s == nil || n.IsMissing() {
		return n.DeepCopy()
	}
	switch s.Type {
	case schema.Record:
		if n.Kind != jsontree.KindObject {
			return n.DeepCopy()
		}
		out := jsontree.Object()
		for _, f := range s.Fields {
			out.Set(f.Name, normalizeChild(n.Get(f.Name), f.Schema))
		}
		return out
	case schema.Array:
		if n.Kind != jsontree.KindArray {
			return n.DeepCopy()
		}
		out := jsontree.Array()
		out.Items = make([]*jsontree.Node, len(n.Items))
		for i, it := range n.Items {
			out.Items[i] = normalizeChild(it, s.Items)
		}
		return out
	case schema.Map:
		if n.Kind != jsontree.KindObject {
			return n.DeepCopy()
		}
		out := jsontree.Object()
		for _, k := range n.Keys() {
			out.Set(k, normalizeChild(n.Get(k), s.Values))
		}
		return out
	case schema.Union:
		if _, b := selectBranch(s, n, true); b != nil {
			return Normalize(n, b)
		}
	}
	return n.DeepCopy()
}

func normalizeChild(n *jsontree.Node, s *schema.Schema) *jsontree.Node {
	if n.IsMissing() {
		return jsontree.Missing()
	}
	if n.Kind == jsontree.KindObject || n.Kind == jsontree.KindArray {
		return Normalize(n, s)
	}
	return n.DeepCopy()
}
