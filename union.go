package relaxavro

import (
	"github.com/reoring/relaxavro/jsontree"
	"github.com/reoring/relaxavro/schema"
)

// selectBranch picks the union branch for n. Branches are tried in
// declaration order against the canonical JSON shape of each type first;
// when relaxed is set and nothing matched, a second pass admits the
// alternate representations the relaxed strategy accepts.
func selectBranch(u *schema.Schema, n *jsontree.Node, relaxed bool) (int, *schema.Schema) {
	for i, b := range u.Branches {
		if canonicalMatch(b, n) {
			return i, b
		}
	}
	if relaxed {
		for i, b := range u.Branches {
			if relaxedMatch(b, n) {
				return i, b
			}
		}
	}
	return -1, nil
}

func canonicalMatch(s *schema.Schema, n *jsontree.Node) bool {
	if n.IsNullish() {
		return s.Type == schema.Null
	}
	switch n.Kind {
	case jsontree.KindBool:
		return s.Type == schema.Boolean
	case jsontree.KindObject:
		return s.Type == schema.Record || s.Type == schema.Map
	case jsontree.KindArray:
		return s.Type == schema.Array
	case jsontree.KindString:
		switch s.Type {
		case schema.String:
			return true
		case schema.Bytes:
			_, ok := latin1Bytes(n.String)
			return ok
		case schema.Enum:
			return s.SymbolIndex(n.String) >= 0
		case schema.Fixed:
			b, ok := latin1Bytes(n.String)
			return ok && len(b) == s.Size
		case schema.Float, schema.Double:
			return isFloatKeyword(n.String)
		}
	case jsontree.KindNumber:
		switch s.Type {
		case schema.Float, schema.Double:
			return true
		case schema.Int:
			_, err := integerRaw(PrimitiveInt, n.Number)
			return n.IsInteger() && err == nil
		case schema.Long:
			_, err := integerRaw(PrimitiveLong, n.Number)
			return n.IsInteger() && err == nil
		}
	}
	return false
}

// relaxedMatch admits strings for integral and decimal slots and numbers for
// decimal and integral slots with a fraction.
func relaxedMatch(s *schema.Schema, n *jsontree.Node) bool {
	switch n.Kind {
	case jsontree.KindString:
		switch s.Type {
		case schema.Int, schema.Long:
			return true
		case schema.Bytes, schema.Fixed:
			return s.LogicalName() == schema.LogicalDecimal
		}
	case jsontree.KindNumber:
		switch s.Type {
		case schema.Int, schema.Long:
			return true
		case schema.Bytes, schema.Fixed:
			return s.LogicalName() == schema.LogicalDecimal
		}
	}
	return false
}

func isFloatKeyword(s string) bool {
	return s == "NaN" || s == "Infinity" || s == "-Infinity"
}
