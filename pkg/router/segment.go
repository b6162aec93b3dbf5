package router

import (
	"regexp"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// SegmentKind classifies a route segment.
type SegmentKind int

const (
	// Static matches one path component literally.
	Static SegmentKind = iota

	// Dynamic matches exactly one path component and binds it to a name.
	Dynamic

	// CatchAll matches one or more trailing path components.
	CatchAll
)

func (k SegmentKind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case CatchAll:
		return "catch-all"
	}
	return "unknown"
}

// Segment is one component of a route pattern. Value is the literal for
// static segments and the parameter name for dynamic ones; it is empty for a
// catch-all.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// String returns the segment in pattern notation.
func (s Segment) String() string {
	switch s.Kind {
	case Dynamic:
		return ":" + s.Value
	case CatchAll:
		return "*"
	}
	return s.Value
}

// CatchAllParam is the parameter name under which a catch-all value is exposed.
const CatchAllParam = "*"

var catchAllRe = regexp.MustCompile(`^\.\.\.(\w+)$`)

// ParsePattern tokenizes a route key such as "blog/[slug]" or
// "docs/[...path]" into segments. The empty key is the root route.
func ParsePattern(key string) ([]Segment, error) {
	key = strings.Trim(key, "/")
	if key == "" {
		return nil, nil
	}

	parts := strings.Split(key, "/")
	segments := make([]Segment, 0, len(parts))
	names := make(map[string]bool)
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		if seg.Kind == CatchAll && i != len(parts)-1 {
			return nil, errors.New("E202").
				WithDetail(part + " is followed by " + strings.Join(parts[i+1:], "/") + ".").
				WithSuggestion("Move the catch-all page to the end of its path, e.g. docs/[...slug].html")
		}
		if seg.Kind == Dynamic {
			if names[seg.Value] {
				return nil, errors.New("E210").
					WithDetail("Parameter " + seg.Value + " appears more than once.").
					WithSuggestion("Give every bracket segment in the path its own name, e.g. [user]/[post].html")
			}
			names[seg.Value] = true
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, errors.New("E206").WithDetail("The path has an empty segment.")
	}

	opens, closes := strings.Count(part, "["), strings.Count(part, "]")
	if opens == 0 && closes == 0 {
		if strings.HasPrefix(part, ":") || strings.Contains(part, "*") {
			return Segment{}, errors.New("E211").
				WithDetail("Segment " + part + " would read as a parameter or catch-all in the route pattern.").
				WithSuggestion("Use [name] for parameters and [...name] for catch-alls")
		}
		return Segment{Kind: Static, Value: part}, nil
	}
	if opens != closes || strings.Index(part, "]") < strings.Index(part, "[") {
		return Segment{}, errors.New("E200").WithDetail("Segment " + part + " does not close every bracket it opens.")
	}
	if opens > 1 || !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
		return Segment{}, errors.New("E206").
			WithDetail("Segment " + part + " mixes brackets with other text.").
			WithSuggestion("A bracket segment must be the whole file or directory name, e.g. [id].html")
	}

	inner := part[1 : len(part)-1]
	switch {
	case inner == "" || inner == "...":
		return Segment{}, errors.New("E201").WithDetail("Segment " + part + " names no parameter.")
	case strings.HasPrefix(inner, "..."):
		if !catchAllRe.MatchString(inner) {
			return Segment{}, errors.New("E206").WithDetail("Catch-all " + part + " must be ... followed by an identifier.")
		}
		return Segment{Kind: CatchAll}, nil
	case strings.HasPrefix(inner, "."):
		return Segment{}, errors.New("E206").WithDetail("Parameter names may not start with a dot, got " + part + ".")
	}
	return Segment{Kind: Dynamic, Value: inner}, nil
}

// FormatPattern renders segments as a URL pattern, e.g. "/blog/:slug".
func FormatPattern(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		sb.WriteString(s.String())
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// shape is the pattern with parameter names erased. Two routes with the same
// shape match exactly the same URLs.
func shape(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		sb.WriteByte('/')
		switch s.Kind {
		case Static:
			sb.WriteString(s.Value)
		case Dynamic:
			sb.WriteByte(':')
		case CatchAll:
			sb.WriteByte('*')
		}
	}
	return sb.String()
}
