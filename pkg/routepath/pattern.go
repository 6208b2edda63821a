package routepath

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SegmentKind classifies a pattern segment.
type SegmentKind int

const (
	// SegmentStatic matches its literal text.
	SegmentStatic SegmentKind = iota

	// SegmentParam matches exactly one path segment (":id").
	SegmentParam

	// SegmentCatchAll matches the rest of the path ("*path").
	SegmentCatchAll
)

// Supported param type constraints.
const (
	ParamString = "string"
	ParamInt    = "int"
	ParamUUID   = "uuid"
)

// Pattern parsing and interpolation errors.
var (
	ErrInvalidPattern = errors.New("invalid route pattern")
	ErrMissingParam   = errors.New("missing path parameter")
)

// Segment is one parsed element of a route pattern.
type Segment struct {
	Kind SegmentKind

	// Value is the literal text of a static segment.
	Value string

	// Name is the parameter name of a param or catch-all segment.
	Name string

	// Type is the param type constraint (string, int, uuid).
	Type string
}

// String renders the segment back in pattern syntax.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentParam:
		if s.Type != "" && s.Type != ParamString {
			return ":" + s.Name + ":" + s.Type
		}
		return ":" + s.Name
	case SegmentCatchAll:
		return "*" + s.Name
	default:
		return s.Value
	}
}

// shape is the segment with the param name erased. The param type is kept.
func (s Segment) shape() string {
	switch s.Kind {
	case SegmentParam:
		return ":" + s.Type
	case SegmentCatchAll:
		return "*"
	default:
		return s.Value
	}
}

// Pattern is a parsed route pattern.
type Pattern struct {
	// Raw is the pattern as declared.
	Raw string

	// Segments are the parsed segments, empty for the root pattern "/".
	Segments []Segment

	// Index is set for index patterns, declared with a trailing slash
	// ("/one-click-apps/"). An index route renders when the URL stops at
	// its parent.
	Index bool
}

// ParsePattern parses a route pattern such as "/services/:serviceId/logs".
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("%w %q: must start with /", ErrInvalidPattern, raw)
	}

	p := Pattern{Raw: raw}
	if raw == "/" {
		return p, nil
	}

	body := raw[1:]
	if strings.HasSuffix(body, "/") {
		p.Index = true
		body = strings.TrimSuffix(body, "/")
	}

	seen := make(map[string]bool)
	parts := strings.Split(body, "/")
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, raw, err)
		}
		if seg.Kind != SegmentStatic {
			if seen[seg.Name] {
				return Pattern{}, fmt.Errorf("%w %q: parameter %q declared twice", ErrInvalidPattern, raw, seg.Name)
			}
			seen[seg.Name] = true
		}
		if seg.Kind == SegmentCatchAll && (i != len(parts)-1 || p.Index) {
			return Pattern{}, fmt.Errorf("%w %q: catch-all must be the last segment", ErrInvalidPattern, raw)
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	switch {
	case part == "":
		return Segment{}, errors.New("empty segment")
	case part == "." || part == "..":
		return Segment{}, errors.New("relative segment")
	case strings.ContainsAny(part, "?#"):
		return Segment{}, fmt.Errorf("segment %q contains query or fragment", part)
	case strings.HasPrefix(part, "*"):
		name := part[1:]
		if !isIdentifier(name) {
			return Segment{}, fmt.Errorf("bad catch-all name %q", name)
		}
		return Segment{Kind: SegmentCatchAll, Name: name, Type: "[]string"}, nil
	case strings.HasPrefix(part, ":"):
		name, typ, hasType := strings.Cut(part[1:], ":")
		if !isIdentifier(name) {
			return Segment{}, fmt.Errorf("bad parameter name %q", name)
		}
		if !hasType {
			typ = ParamString
		}
		switch typ {
		case ParamString, ParamInt, ParamUUID:
		default:
			return Segment{}, fmt.Errorf("unknown parameter type %q", typ)
		}
		return Segment{Kind: SegmentParam, Name: name, Type: typ}, nil
	default:
		return Segment{Kind: SegmentStatic, Value: part}, nil
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Shape returns the pattern with parameter names erased. Two patterns with
// the same shape match exactly the same URLs. Patterns whose params differ
// only in type have different shapes.
func (p Pattern) Shape() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		b.WriteByte('/')
		b.WriteString(seg.shape())
	}
	if p.Index || len(p.Segments) == 0 {
		b.WriteByte('/')
	}
	return b.String()
}

// Base returns the pattern with an index marker removed: "/one-click-apps/"
// becomes "/one-click-apps".
func (p Pattern) Base() string {
	if !p.Index {
		return p.Raw
	}
	return strings.TrimSuffix(p.Raw, "/")
}

// ExtendsPrefix reports whether p lies below parent: parent's segments are a
// segment-wise prefix of p's, and p is strictly deeper (or is parent's index).
func (p Pattern) ExtendsPrefix(parent Pattern) bool {
	if parent.Index || len(parent.Segments) > len(p.Segments) {
		return false
	}
	for i, seg := range parent.Segments {
		if seg.String() != p.Segments[i].String() {
			return false
		}
	}
	if len(parent.Segments) == len(p.Segments) {
		return p.Index
	}
	return true
}

// Params returns the names of the pattern's params in declaration order.
func (p Pattern) Params() []string {
	var names []string
	for _, seg := range p.Segments {
		if seg.Kind != SegmentStatic {
			names = append(names, seg.Name)
		}
	}
	return names
}

// Interpolate fills the pattern's params from values and returns a canonical
// path. Param values are path-escaped; a catch-all value keeps its "/"
// separators. Index patterns interpolate to their parent's path.
func (p Pattern) Interpolate(values map[string]string) (string, error) {
	if len(p.Segments) == 0 {
		return "/", nil
	}

	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegmentStatic:
			parts = append(parts, seg.Value)
		case SegmentParam:
			v := values[seg.Name]
			if v == "" {
				return "", fmt.Errorf("%w %q for %s", ErrMissingParam, seg.Name, p.Raw)
			}
			parts = append(parts, url.PathEscape(v))
		case SegmentCatchAll:
			v := strings.Trim(values[seg.Name], "/")
			if v == "" {
				return "", fmt.Errorf("%w %q for %s", ErrMissingParam, seg.Name, p.Raw)
			}
			for _, piece := range strings.Split(v, "/") {
				parts = append(parts, url.PathEscape(piece))
			}
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}

// Interpolate parses raw and fills its params from values.
func Interpolate(raw string, values map[string]string) (string, error) {
	p, err := ParsePattern(raw)
	if err != nil {
		return "", err
	}
	return p.Interpolate(values)
}
