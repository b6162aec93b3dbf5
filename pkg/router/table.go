package router

import (
	stderrors "errors"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/pages"
)

// RouteEntry binds a URL pattern to a page component.
type RouteEntry struct {
	// Pattern is the URL pattern, e.g. "/blog/:slug".
	Pattern string

	// Segments is the tokenized pattern.
	Segments []Segment

	// Component renders the page.
	Component pages.Component

	// RawPath is the page file the entry was built from.
	RawPath string
}

// Params returns the names of the entry's parameters in pattern order. A
// catch-all is listed as "*".
func (e *RouteEntry) Params() []string {
	var names []string
	for _, s := range e.Segments {
		switch s.Kind {
		case Dynamic:
			names = append(names, s.Value)
		case CatchAll:
			names = append(names, CatchAllParam)
		}
	}
	return names
}

// IsStatic reports whether the pattern has no parameters.
func (e *RouteEntry) IsStatic() bool {
	for _, s := range e.Segments {
		if s.Kind != Static {
			return false
		}
	}
	return true
}

// RouteTable is the result of Build. It is never mutated after Build returns.
type RouteTable struct {
	// Entries are in discovery order.
	Entries []RouteEntry

	// App wraps every rendered page, nil when absent.
	App pages.Component

	// NotFound is rendered when no entry matches, nil when absent.
	NotFound pages.Component

	// AppPath and NotFoundPath are the page files of the two slots.
	AppPath, NotFoundPath string
}

// Lookup returns the entry with the given pattern.
func (t *RouteTable) Lookup(pattern string) (*RouteEntry, bool) {
	for i := range t.Entries {
		if t.Entries[i].Pattern == pattern {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// Patterns returns the entry patterns in table order.
func (t *RouteTable) Patterns() []string {
	out := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Pattern
	}
	return out
}

// Build converts every discovered candidate into a route entry, in discovery
// order, and validates the table as a whole. All configuration errors are
// returned together; no partial table is returned.
func Build(d *pages.Discovery) (*RouteTable, error) {
	opts := d.Options.WithDefaults()
	table := &RouteTable{
		Entries:      make([]RouteEntry, 0, len(d.Candidates)),
		App:          d.App,
		NotFound:     d.NotFound,
		AppPath:      d.AppPath,
		NotFoundPath: d.NotFoundPath,
	}

	var errs []error
	for _, c := range d.Candidates {
		key, ok := pages.NormalizeKey(c.RawPath, opts)
		if !ok {
			errs = append(errs, errors.New("E209").WithPath(c.RawPath).WithDetail("The pages root is "+opts.Root+"."))
			continue
		}
		segments, err := ParsePattern(key)
		if err != nil {
			var pe *errors.PagekitError
			if stderrors.As(err, &pe) {
				pe.WithPath(c.RawPath)
			}
			errs = append(errs, err)
			continue
		}
		table.Entries = append(table.Entries, RouteEntry{
			Pattern:   FormatPattern(segments),
			Segments:  segments,
			Component: c.Component,
			RawPath:   c.RawPath,
		})
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}

	if err := NewValidator(table.Entries).Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
