package search

import (
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Params holds validated search values keyed by field name.
// Values are string, []string, int or bool.
type Params map[string]any

// Has reports whether name carries a value.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// String returns a string or enum value, or "" when absent.
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Strings returns an array value, or nil when absent.
func (p Params) Strings(name string) []string {
	s, _ := p[name].([]string)
	return s
}

// Int returns an integer value, or 0 when absent.
func (p Params) Int(name string) int {
	n, _ := p[name].(int)
	return n
}

// Bool returns a boolean value, or false when absent.
func (p Params) Bool(name string) bool {
	b, _ := p[name].(bool)
	return b
}

// Merge returns a new Params holding p overlaid with other.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	maps.Copy(out, p)
	maps.Copy(out, other)
	return out
}

// Values converts the params back to query values.
// Arrays become repeated keys.
func (p Params) Values() url.Values {
	q := make(url.Values, len(p))
	for k, v := range p {
		switch val := v.(type) {
		case []string:
			q[k] = slices.Clone(val)
		case string:
			q.Set(k, val)
		case int:
			q.Set(k, strconv.Itoa(val))
		case bool:
			q.Set(k, strconv.FormatBool(val))
		default:
			q.Set(k, fmt.Sprint(val))
		}
	}
	return q
}

// Encode renders the params as a query string sorted by key.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Decode copies the params into a struct pointer. Fields are matched by a
// `search:"name"` tag, falling back to the lowercased field name; a tag of
// "-" skips the field.
//
//	type ServiceListSearch struct {
//	    Search string   `search:"search"`
//	    Status string   `search:"status"`
//	    Page   int      `search:"page"`
//	    Tags   []string `search:"tags"`
//	}
func (p Params) Decode(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("search")
		if key == "" {
			key = strings.ToLower(field.Name)
		}
		if key == "-" {
			continue
		}

		value, ok := p[key]
		if !ok {
			continue
		}
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(fv.Type()) {
			if !rv.Type().ConvertibleTo(fv.Type()) || rv.Kind() != fv.Kind() {
				return fmt.Errorf("search field %q: cannot assign %T to %s", key, value, fv.Type())
			}
			rv = rv.Convert(fv.Type())
		}
		fv.Set(rv)
	}
	return nil
}
