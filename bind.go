package relaxavro

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/relaxavro/schema"
)

// SchemaProvider is implemented by struct types that describe their own
// record schema. The method must work on the zero value.
type SchemaProvider interface {
	AvroSchema() *schema.Schema
}

// DecodeToTyped decodes data against T's schema and binds the record into a
// new T.
func DecodeToTyped[T SchemaProvider](ctx context.Context, data []byte, opts ...Option) (T, error) {
	var out T
	rec, err := DecodeToRecord(ctx, data, out.AvroSchema(), opts...)
	if err != nil {
		return out, err
	}
	if err := Bind(rec, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Bind copies the record's fields into the struct target points to. Struct
// fields are matched by their `avro:"name"` tag, or by name when untagged;
// the tag "-" skips a field. Nested records bind into struct or pointer to
// struct fields, arrays into slices and maps into string-keyed maps.
func Bind(r *Record, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidBindingTarget
	}
	return bindRecord(r, rv.Elem(), "")
}

func bindRecord(r *Record, dst reflect.Value, at string) error {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("avro"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		v, ok := r.Lookup(name)
		if !ok {
			continue
		}
		if err := assign(dst.Field(i), v, at+"/"+name); err != nil {
			return err
		}
	}
	return nil
}

func assign(dst reflect.Value, v any, at string) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v, at); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	switch t := v.(type) {
	case *Record:
		if dst.Kind() != reflect.Struct {
			return bindError(at, v, dst)
		}
		return bindRecord(t, dst, at)
	case []any:
		if dst.Kind() != reflect.Slice {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(t), len(t))
		for i, it := range t {
			if err := assign(out.Index(i), it, fmt.Sprintf("%s/%d", at, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case map[string]any:
		if dst.Kind() != reflect.Map || dst.Type().Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(t))
		for k, it := range t {
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(ev, it, at+"/"+k); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
		}
		dst.Set(out)
		return nil
	}
	if convertible(sv, dst) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return bindError(at, v, dst)
}

// convertible allows widening between numeric kinds and string-like kinds.
func convertible(sv, dst reflect.Value) bool {
	if !sv.Type().ConvertibleTo(dst.Type()) {
		return false
	}
	switch sv.Kind() {
	case reflect.Int32, reflect.Int64:
		switch dst.Kind() {
		case reflect.Int, reflect.Int64:
			return true
		case reflect.Int32:
			return sv.Kind() == reflect.Int32
		}
	case reflect.Float32, reflect.Float64:
		return dst.Kind() == reflect.Float64 || (dst.Kind() == reflect.Float32 && sv.Kind() == reflect.Float32)
	case reflect.String:
		return dst.Kind() == reflect.String
	case reflect.Slice:
		return dst.Kind() == reflect.Slice
	}
	return false
}

func bindError(at string, v any, dst reflect.Value) error {
	return &DecodeError{
		Path:    at,
		Code:    CodeSchemaMismatch,
		Message: fmt.Sprintf("cannot bind %T into %s", v, dst.Type()),
		Cause:   ErrInvalidBindingTarget,
	}
}
