// Package routepath canonicalises request paths before route matching.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result is a canonicalised request path.
type Result struct {
	// Path is the canonical path, always rooted, never with a trailing slash
	// except for "/" itself.
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// Canonicalisation errors. A request whose path fails with one of these is
// malformed and must not be matched.
var (
	ErrBackslash            = errors.New("path contains a backslash")
	ErrNullByte             = errors.New("path contains a NUL byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape in path")
	ErrEscapesRoot          = errors.New("path climbs above the root")
)

// CanonicalizePath collapses repeated slashes, resolves "." and ".."
// segments and drops a trailing slash. The input is an escaped path with an
// optional query, which is split off and left untouched.
func CanonicalizePath(input string) (Result, error) {
	p, query, _ := strings.Cut(input, "?")

	if strings.ContainsRune(p, '\\') {
		return Result{}, ErrBackslash
	}
	if strings.ContainsRune(p, 0) || strings.Contains(strings.ToUpper(p), "%00") {
		return Result{}, ErrNullByte
	}
	if err := checkEscapes(p); err != nil {
		return Result{}, err
	}

	var stack []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return Result{}, ErrEscapesRoot
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	canonical := "/" + strings.Join(stack, "/")
	return Result{
		Path:    canonical,
		Query:   query,
		Changed: canonical != p,
	}, nil
}

func checkEscapes(p string) error {
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			continue
		}
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// DecodePathSegments splits a canonical path and unescapes each segment. An
// escaped slash stays inside its segment.
func DecodePathSegments(p string) ([]string, error) {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil, nil
	}
	raw := strings.Split(p, "/")
	out := make([]string, len(raw))
	for i, seg := range raw {
		s, err := url.PathUnescape(seg)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		out[i] = s
	}
	return out, nil
}
