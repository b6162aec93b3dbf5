package pages

import (
	"context"
	stderrors "errors"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// Discovery is the result of discovering a page tree.
type Discovery struct {
	// App is the app shell (_app), nil when absent.
	App Component

	// NotFound is the not-found page (404), nil when absent.
	NotFound Component

	// AppPath and NotFoundPath are the raw paths of the filled slots.
	AppPath, NotFoundPath string

	// Candidates are the routable pages in discovery order.
	Candidates []PageFile

	// Options are the options the tree was discovered with, defaults applied.
	Options Options
}

// Discover walks src and partitions the matched pages into reserved slots and
// routable candidates. Every matched page is loaded. Configuration errors
// (missing default component, duplicate pages, overlapping patterns, load
// failures) are collected and returned together; no partial Discovery is
// ever returned.
func Discover(ctx context.Context, src Source, opts Options) (*Discovery, error) {
	opts = opts.WithDefaults()
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}

	d := &Discovery{Options: opts}
	var errs []error
	seenRaw := make(map[string]bool)
	seenKey := make(map[string]string)

	walkErr := src.Walk(ctx, func(rawPath string, load LoadFunc) error {
		rel, ok := opts.Rel(rawPath)
		if !ok {
			return nil
		}
		reserved := matchAny(opts.ReservedPatterns, rel)
		routable := matchAny(opts.RoutePatterns, rel)
		if !reserved && !routable {
			return nil
		}

		if reserved && routable {
			errs = append(errs, errors.New("E207").
				WithPath(rawPath).
				WithDetail("The file matches both the reserved and the route patterns."))
			return nil
		}
		if seenRaw[rawPath] {
			errs = append(errs, errors.New("E203").
				WithPath(rawPath).
				WithDetail("The source yields this path more than once."))
			return nil
		}
		seenRaw[rawPath] = true

		var slot *Component
		var slotPath *string
		if reserved {
			switch BaseName(rawPath, opts.Ext) {
			case AppSlot:
				slot, slotPath = &d.App, &d.AppPath
			case NotFoundSlot:
				slot, slotPath = &d.NotFound, &d.NotFoundPath
			default:
				errs = append(errs, errors.New("E207").
					WithPath(rawPath).
					WithDetail("Reserved patterns may only match "+AppSlot+opts.Ext+" and "+NotFoundSlot+opts.Ext+"."))
				return nil
			}
			if *slotPath != "" {
				errs = append(errs, errors.New("E203").
					WithPath(rawPath).
					WithDetail("The slot is already filled by "+*slotPath+"."))
				return nil
			}
		} else {
			key, _ := NormalizeKey(rawPath, opts)
			if prev, dup := seenKey[key]; dup {
				errs = append(errs, errors.New("E203").
					WithPath(rawPath).
					WithDetail("It resolves to the same route as "+prev+".").
					WithSuggestion("Remove or rename one of the two files"))
				return nil
			}
			seenKey[key] = rawPath
		}

		c, err := load(ctx)
		if err != nil {
			var pe *errors.PagekitError
			if stderrors.As(err, &pe) {
				errs = append(errs, err)
			} else {
				errs = append(errs, errors.New("E208").WithPath(rawPath).Wrap(err))
			}
			return nil
		}
		if c == nil {
			errs = append(errs, errors.New("E204").WithPath(rawPath))
			return nil
		}

		if slot != nil {
			*slot, *slotPath = c, rawPath
			return nil
		}
		d.Candidates = append(d.Candidates, PageFile{RawPath: rawPath, Component: c})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return d, nil
}

func validatePatterns(opts Options) error {
	var errs []error
	for _, p := range append(append([]string(nil), opts.ReservedPatterns...), opts.RoutePatterns...) {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, errors.New("E207").WithDetail("Malformed glob "+p+"."))
		}
	}
	return stderrors.Join(errs...)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
