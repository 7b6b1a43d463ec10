// Package jsontree holds an ordered, loss-free JSON tree: object keys keep
// their input order and numbers keep their literal text, so the decoder can
// decide how to interpret each token against a schema.
package jsontree

import "strconv"

// Kind enumerates node kinds. Missing marks an absent object member.
type Kind int

const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindMissing: "missing",
	KindNull:    "null",
	KindBool:    "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindObject:  "object",
	KindArray:   "array",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is a JSON value. Only the fields matching Kind are meaningful.
type Node struct {
	Kind   Kind
	Bool   bool
	Number string // literal text, e.g. "19.565" or "2147483648"
	String string
	Items  []*Node

	keys   []string
	fields map[string]*Node
}

var missing = &Node{Kind: KindMissing}

// Missing returns the shared absent-member marker.
func Missing() *Node { return missing }

// Null returns a new null node.
func Null() *Node { return &Node{Kind: KindNull} }

// Bool returns a new boolean node.
func Bool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }

// String returns a new string node.
func String(s string) *Node { return &Node{Kind: KindString, String: s} }

// Number returns a number node carrying the literal text.
func Number(text string) *Node { return &Node{Kind: KindNumber, Number: text} }

// Int returns a number node for an integer.
func Int(i int64) *Node { return Number(strconv.FormatInt(i, 10)) }

// Array returns an array node.
func Array(items ...*Node) *Node { return &Node{Kind: KindArray, Items: items} }

// Object returns an empty object node.
func Object() *Node { return &Node{Kind: KindObject, fields: map[string]*Node{}} }

// Set adds or replaces a member. A replaced member keeps its original
// position.
func (n *Node) Set(key string, v *Node) *Node {
	if n.fields == nil {
		n.fields = map[string]*Node{}
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
	return n
}

// Get returns the member at key, or the Missing marker when n is not an
// object or has no such member.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return missing
	}
	if v, ok := n.fields[key]; ok {
		return v
	}
	return missing
}

// Has reports whether the object carries key.
func (n *Node) Has(key string) bool {
	if n == nil || n.Kind != KindObject {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Keys returns object member names in order.
func (n *Node) Keys() []string { return n.keys }

// Len returns the member count for objects and the item count for arrays.
func (n *Node) Len() int {
	switch n.Kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.Items)
	}
	return 0
}

// IsMissing reports whether n is nil or the Missing marker.
func (n *Node) IsMissing() bool { return n == nil || n.Kind == KindMissing }

// IsNullish reports whether n is null or missing.
func (n *Node) IsNullish() bool { return n.IsMissing() || n.Kind == KindNull }

// IsInteger reports whether a number literal has neither fraction nor exponent.
func (n *Node) IsInteger() bool {
	if n.Kind != KindNumber {
		return false
	}
	for i := 0; i < len(n.Number); i++ {
		switch n.Number[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return true
}

// DeepCopy returns an independent copy of the tree.
func (n *Node) DeepCopy() *Node {
	if n == nil || n.Kind == KindMissing {
		return missing
	}
	c := &Node{Kind: n.Kind, Bool: n.Bool, Number: n.Number, String: n.String}
	switch n.Kind {
	case KindArray:
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.DeepCopy()
		}
	case KindObject:
		c.keys = append([]string(nil), n.keys...)
		c.fields = make(map[string]*Node, len(n.fields))
		for k, v := range n.fields {
			c.fields[k] = v.DeepCopy()
		}
	}
	return c
}

// Equal reports structural equality. Object member order is ignored and
// numbers compare by literal text.
func (n *Node) Equal(o *Node) bool {
	if n.IsMissing() || o.IsMissing() {
		return n.IsMissing() && o.IsMissing()
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindBool:
		return n.Bool == o.Bool
	case KindNumber:
		return n.Number == o.Number
	case KindString:
		return n.String == o.String
	case KindArray:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
	case KindObject:
		if len(n.fields) != len(o.fields) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := o.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
	}
	return true
}
