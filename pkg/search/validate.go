package search

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Issue codes reported in a ValidationError.
const (
	IssueRequired    = "required"
	IssueShape       = "invalid_shape"
	IssueType        = "invalid_type"
	IssueEnum        = "invalid_enum_value"
	IssueQuerySyntax = "invalid_query"
)

// Issue describes one rejected search field.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError reports every rejected field of one query string.
type ValidationError struct {
	// Route is the route pattern whose schema rejected the query, when known.
	Route string `json:"route,omitempty"`

	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid search parameters")
	if e.Route != "" {
		b.WriteString(" for ")
		b.WriteString(e.Route)
	}
	for i, is := range e.Issues {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if is.Field != "" {
			b.WriteString(is.Field)
			b.WriteString(": ")
		}
		b.WriteString(is.Message)
	}
	return b.String()
}

// ErrorCode identifies the error in structured error output.
func (e *ValidationError) ErrorCode() string { return "E220" }

// Validate coerces rawQuery (without the leading "?") against schema.
//
// A nil schema accepts any query and yields empty Params: undeclared keys are
// never passed through. Malformed pairs are only an error when their key is
// declared by the schema.
func Validate(schema *Schema, rawQuery string) (Params, error) {
	values, err := url.ParseQuery(rawQuery)
	if err == nil {
		return ValidateValues(schema, values)
	}
	if schema == nil {
		return Params{}, nil
	}

	values, issues := parseDeclared(schema, rawQuery)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return ValidateValues(schema, values)
}

// parseDeclared parses rawQuery pair by pair, keeping only keys declared by
// schema. Pairs that fail to decode are reported against their field.
func parseDeclared(schema *Schema, rawQuery string) (url.Values, []Issue) {
	values := url.Values{}
	var issues []Issue
	reported := map[string]bool{}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			continue
		}
		field, ok := schema.declares(key)
		if !ok {
			continue
		}

		value, err := url.QueryUnescape(rawValue)
		if err == nil && strings.Contains(rawValue, ";") {
			err = fmt.Errorf("invalid semicolon separator in query")
		}
		if err != nil {
			if !reported[field] {
				reported[field] = true
				issues = append(issues, Issue{Field: field, Code: IssueQuerySyntax, Message: err.Error()})
			}
			continue
		}
		values.Add(key, value)
	}
	return values, issues
}

// ValidateValues is Validate over an already parsed query.
func ValidateValues(schema *Schema, values url.Values) (Params, error) {
	out := Params{}
	if schema == nil {
		return out, nil
	}

	var issues []Issue
	for _, f := range schema.fields {
		plain, hasPlain := values[f.Name]
		bracketed, hasBracketed := values[f.Name+"[]"]

		if !hasPlain && !hasBracketed {
			if f.DefaultValue != nil {
				out[f.Name] = cloneValue(f.DefaultValue)
			} else if !f.IsOptional {
				issues = append(issues, Issue{Field: f.Name, Code: IssueRequired, Message: "required"})
			}
			continue
		}

		v, issue := coerce(f, plain, bracketed, hasBracketed)
		if issue == nil {
			out[f.Name] = v
			continue
		}

		switch {
		case f.OnInvalid == PolicyCatch && f.DefaultValue != nil:
			out[f.Name] = cloneValue(f.DefaultValue)
		case f.OnInvalid == PolicyCatch && f.IsOptional, f.OnInvalid == PolicyDrop && f.IsOptional:
			// omitted
		case f.OnInvalid == PolicyDrop && f.DefaultValue != nil:
			out[f.Name] = cloneValue(f.DefaultValue)
		default:
			issues = append(issues, *issue)
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

// coerce converts the raw values of one field to its declared kind.
func coerce(f Field, plain, bracketed []string, hasBracketed bool) (any, *Issue) {
	if f.Kind == KindStrings {
		all := slices.Concat(plain, bracketed)
		if f.Encoding == EncodingComma {
			var split []string
			for _, v := range all {
				if v == "" {
					continue
				}
				split = append(split, strings.Split(v, ",")...)
			}
			all = split
		}
		if all == nil {
			all = []string{}
		}
		return all, nil
	}

	if hasBracketed || len(plain) != 1 {
		return nil, &Issue{
			Field:   f.Name,
			Code:    IssueShape,
			Message: fmt.Sprintf("expected a single %s value, got an array", f.Kind),
		}
	}
	raw := plain[0]

	switch f.Kind {
	case KindEnum:
		if !slices.Contains(f.Values, raw) {
			return nil, &Issue{
				Field:   f.Name,
				Code:    IssueEnum,
				Message: fmt.Sprintf("%q is not one of %s", raw, strings.Join(f.Values, ", ")),
			}
		}
		return raw, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &Issue{Field: f.Name, Code: IssueType, Message: fmt.Sprintf("%q is not an integer", raw)}
		}
		return n, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &Issue{Field: f.Name, Code: IssueType, Message: fmt.Sprintf("%q is not a boolean", raw)}
		}
		return b, nil
	default:
		return raw, nil
	}
}

func cloneValue(v any) any {
	if s, ok := v.([]string); ok {
		return slices.Clone(s)
	}
	return v
}
