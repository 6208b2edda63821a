// Package search declares and validates the query-string contract of console
// routes.
//
// A route that accepts search parameters declares a Schema:
//
//	search.MustSchema(
//	    search.String("search").Optional(),
//	    search.Enum("status", "running", "stopped", "failed").Optional(),
//	    search.Enum("sort", "name", "created").Default("created"),
//	    search.Strings("tags").Optional().WithEncoding(search.EncodingComma),
//	)
//
// Validate coerces a raw query string against the schema. Values come back
// typed (string, []string, int, bool); keys the schema does not declare are
// dropped; a present but malformed value is reported as a *ValidationError
// unless the field opts into Catch (fall back to default) or DropInvalid.
package search

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is the declared type of a search field.
type Kind int

const (
	// KindString accepts exactly one value.
	KindString Kind = iota

	// KindStrings accepts any number of values.
	KindStrings

	// KindEnum accepts exactly one value from a literal set.
	KindEnum

	// KindInt accepts exactly one base-10 integer.
	KindInt

	// KindBool accepts exactly one boolean (true/false/1/0).
	KindBool
)

// String returns the kind name used in manifests and error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStrings:
		return "string[]"
	case KindEnum:
		return "enum"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Encoding controls how array fields are read from the query string.
type Encoding int

const (
	// EncodingRepeat reads repeated keys: ?tag=a&tag=b (also tag[]=a).
	EncodingRepeat Encoding = iota

	// EncodingComma reads comma-separated values: ?tags=go,web,api
	EncodingComma
)

func (e Encoding) String() string {
	if e == EncodingComma {
		return "comma"
	}
	return "repeat"
}

// Policy decides what happens to a present but malformed value.
type Policy int

const (
	// PolicyReject fails validation.
	PolicyReject Policy = iota

	// PolicyCatch replaces the value with the field default.
	PolicyCatch

	// PolicyDrop omits the value as if it were absent.
	PolicyDrop
)

func (p Policy) String() string {
	switch p {
	case PolicyCatch:
		return "catch"
	case PolicyDrop:
		return "drop"
	default:
		return "reject"
	}
}

// Field declares one accepted search parameter.
// Fields are values; builder methods return modified copies.
type Field struct {
	Name     string
	Kind     Kind
	Values   []string
	Encoding Encoding

	// IsOptional fields may be absent from the query.
	IsOptional bool

	// DefaultValue is used when the field is absent (or malformed under
	// PolicyCatch).
	DefaultValue any

	// OnInvalid decides what happens to a malformed value.
	OnInvalid Policy
}

// String declares a single-valued string field.
func String(name string) Field { return Field{Name: name, Kind: KindString} }

// Strings declares an array-of-strings field.
func Strings(name string) Field { return Field{Name: name, Kind: KindStrings} }

// Enum declares a field restricted to the given literals.
func Enum(name string, values ...string) Field {
	return Field{Name: name, Kind: KindEnum, Values: values}
}

// Int declares an integer field.
func Int(name string) Field { return Field{Name: name, Kind: KindInt} }

// Bool declares a boolean field.
func Bool(name string) Field { return Field{Name: name, Kind: KindBool} }

// Optional marks the field as not required.
func (f Field) Optional() Field {
	f.IsOptional = true
	return f
}

// Default sets the value used when the field is absent.
// A field with a default is never reported as missing.
func (f Field) Default(v any) Field {
	f.DefaultValue = v
	return f
}

// WithEncoding sets the array encoding.
func (f Field) WithEncoding(e Encoding) Field {
	f.Encoding = e
	return f
}

// Catch makes malformed values fall back to the default.
func (f Field) Catch() Field {
	f.OnInvalid = PolicyCatch
	return f
}

// DropInvalid makes malformed values behave as absent.
func (f Field) DropInvalid() Field {
	f.OnInvalid = PolicyDrop
	return f
}

// check verifies the field declaration itself.
func (f Field) check() error {
	if f.Name == "" {
		return fmt.Errorf("search field has no name")
	}
	if strings.ContainsAny(f.Name, "[]&=?#") {
		return fmt.Errorf("search field %q: name contains reserved characters", f.Name)
	}
	if f.Kind == KindEnum && len(f.Values) == 0 {
		return fmt.Errorf("search field %q: enum has no values", f.Name)
	}
	if f.DefaultValue == nil {
		return nil
	}

	ok := false
	switch d := f.DefaultValue.(type) {
	case string:
		ok = f.Kind == KindString || (f.Kind == KindEnum && slices.Contains(f.Values, d))
	case []string:
		ok = f.Kind == KindStrings
	case int:
		ok = f.Kind == KindInt
	case bool:
		ok = f.Kind == KindBool
	}
	if !ok {
		return fmt.Errorf("search field %q: default %v (%T) does not fit kind %s", f.Name, f.DefaultValue, f.DefaultValue, f.Kind)
	}
	return nil
}

// Schema is an ordered, immutable set of search fields.
type Schema struct {
	fields []Field
}

// NewSchema builds a schema, rejecting malformed or duplicate fields.
func NewSchema(fields ...Field) (*Schema, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := f.check(); err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("search field %q declared twice", f.Name)
		}
		seen[f.Name] = true
	}
	return &Schema{fields: slices.Clone(fields)}, nil
}

// MustSchema is like NewSchema but panics on error.
// It is meant for package-level route declarations.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the schema's fields in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return slices.Clone(s.fields)
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// declares reports the field a query key belongs to. Both "name" and
// "name[]" belong to field name.
func (s *Schema) declares(key string) (string, bool) {
	name := strings.TrimSuffix(key, "[]")
	if _, ok := s.Field(name); !ok {
		return "", false
	}
	return name, true
}
