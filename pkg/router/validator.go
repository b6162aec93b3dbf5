package router

import (
	stderrors "errors"
	"sort"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Validator checks a set of route entries for conflicts.
type Validator struct {
	entries []RouteEntry
	errs    []error
}

// NewValidator creates a validator over entries.
func NewValidator(entries []RouteEntry) *Validator {
	return &Validator{entries: entries}
}

// Validate returns nil when the entries are conflict free, or all conflicts
// joined into one error.
func (v *Validator) Validate() error {
	v.errs = nil

	v.validateAmbiguous()

	return stderrors.Join(v.errs...)
}

// validateAmbiguous reports entries that match exactly the same URLs, such as
// /blog/:slug and /blog/:id. Precedence cannot separate them.
func (v *Validator) validateAmbiguous() {
	byShape := make(map[string][]RouteEntry)
	var order []string
	for _, e := range v.entries {
		s := shape(e.Segments)
		if _, seen := byShape[s]; !seen {
			order = append(order, s)
		}
		byShape[s] = append(byShape[s], e)
	}

	for _, s := range order {
		group := byShape[s]
		if len(group) <= 1 {
			continue
		}
		lines := make([]string, len(group))
		for i, e := range group {
			lines[i] = e.RawPath + " → " + e.Pattern
		}
		v.errs = append(v.errs, errors.New("E205").
			WithPath(group[1].RawPath).
			WithDetail("These pages match the same URLs: "+strings.Join(lines, ", ")+".").
			WithSuggestion("Rename the parameter segments so only one page serves this path"))
	}
}

// SortBySpecificity orders entries the way the matcher prefers them: at the
// first differing segment static sorts before dynamic, and dynamic before
// catch-all. Ties keep their relative order.
func SortBySpecificity(entries []RouteEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return compareSpecificity(entries[i].Segments, entries[j].Segments) < 0
	})
}

func compareSpecificity(a, b []Segment) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Kind != b[i].Kind {
			return int(a[i].Kind) - int(b[i].Kind)
		}
		if a[i].Kind == Static && a[i].Value != b[i].Value {
			return strings.Compare(a[i].Value, b[i].Value)
		}
	}
	return len(a) - len(b)
}
