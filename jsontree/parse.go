package jsontree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// ErrSyntax is wrapped by every error caused by malformed JSON text.
var ErrSyntax = errors.New("jsontree: malformed JSON")

// Parse reads exactly one JSON value from data.
func Parse(data []byte) (*Node, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader reads exactly one JSON value from r. The whole document is
// buffered in memory.
func ParseReader(r io.Reader) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	p := &treeParser{dec: dec}
	tok, err := p.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrSyntax)
		}
		return nil, err
	}
	n, err := p.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrSyntax)
	}
	return n, nil
}

type treeParser struct {
	dec *json.Decoder
}

func (p *treeParser) next() (json.Token, error) {
	tok, err := p.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return tok, nil
}

func (p *treeParser) value(tok json.Token) (*Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return p.object()
		case '[':
			return p.array()
		}
		return nil, fmt.Errorf("%w: unexpected delimiter %q", ErrSyntax, rune(v))
	case string:
		return String(v), nil
	case json.Number:
		return Number(string(v)), nil
	case float64:
		return Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return Bool(v), nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("%w: unexpected token %T", ErrSyntax, tok)
}

func (p *treeParser) object() (*Node, error) {
	obj := Object()
	for {
		tok, err := p.next()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected object key, got %v", ErrSyntax, tok)
		}
		vt, err := p.next()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		v, err := p.value(vt)
		if err != nil {
			return nil, err
		}
		// Duplicate keys: the last occurrence wins.
		obj.Set(key, v)
	}
}

func (p *treeParser) array() (*Node, error) {
	arr := Array()
	for {
		tok, err := p.next()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := p.value(tok)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, v)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrSyntax, io.ErrUnexpectedEOF)
	}
	return err
}

// FromValue converts a decoded Go value (nil, bool, numbers, json.Number,
// string, []any, map[string]any) into a tree. Map members are ordered by key.
func FromValue(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(string(t)), nil
	case int:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Number(strconv.FormatUint(t, 10)), nil
	case float32:
		return Number(strconv.FormatFloat(float64(t), 'g', -1, 32)), nil
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case []any:
		arr := Array()
		for _, it := range t {
			n, err := FromValue(it)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, n)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := Object()
		for _, k := range keys {
			n, err := FromValue(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, n)
		}
		return obj, nil
	case *Node:
		return t.DeepCopy(), nil
	}
	return nil, fmt.Errorf("jsontree: unsupported value %T", v)
}
