package jsontree

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Marshal renders the tree as compact JSON. Object members are written in
// their stored order; a Missing node renders as null.
func Marshal(n *Node) ([]byte, error) {
	w := &writer{}
	if err := w.node(n); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(n *Node, prefix, indent string) ([]byte, error) {
	compact, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) { return Marshal(n) }

type writer struct {
	buf     bytes.Buffer
	scratch bytes.Buffer
	enc     *json.Encoder
}

func (w *writer) node(n *Node) error {
	if n.IsMissing() {
		w.buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindNull:
		w.buf.WriteString("null")
	case KindBool:
		if n.Bool {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case KindNumber:
		w.buf.WriteString(n.Number)
	case KindString:
		return w.str(n.String)
	case KindArray:
		w.buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			if err := w.node(it); err != nil {
				return err
			}
		}
		w.buf.WriteByte(']')
	case KindObject:
		w.buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			if err := w.str(k); err != nil {
				return err
			}
			w.buf.WriteByte(':')
			if err := w.node(n.fields[k]); err != nil {
				return err
			}
		}
		w.buf.WriteByte('}')
	}
	return nil
}

func (w *writer) str(s string) error {
	if w.enc == nil {
		w.enc = json.NewEncoder(&w.scratch)
		w.enc.SetEscapeHTML(false)
	}
	w.scratch.Reset()
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	w.buf.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte("\n")))
	return nil
}
