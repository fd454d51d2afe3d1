package router

import "errors"

var (
	// ErrNoPoolFound: candidate selection produced an empty set.
	ErrNoPoolFound = errors.New("no candidate pools found")

	// ErrNoRoute: enumeration found no path between the tokens.
	ErrNoRoute = errors.New("no route found")

	// ErrNoValidSplit: the split search found no partition satisfying the
	// split bounds with non-overlapping pools.
	ErrNoValidSplit = errors.New("no valid split found")
)

// IsNoRoute reports whether err is one of the "no route" business outcomes.
// These are valid results (insufficient or no liquidity), not defects, and
// callers surface them as a uniform empty result. Anything else is a
// collaborator failure and propagates as a request-level error.
func IsNoRoute(err error) bool {
	return errors.Is(err, ErrNoPoolFound) || errors.Is(err, ErrNoRoute) || errors.Is(err, ErrNoValidSplit)
}
