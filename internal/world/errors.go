package world

import "errors"

// Standard errors returned by world construction and queries.
var (
	// ErrConstruction indicates a world could not be built: the entrypoint
	// is outside the declared root or unreadable. No partially initialized
	// world is ever returned alongside it.
	ErrConstruction = errors.New("world construction failed")

	// ErrNoCompiler indicates no compiler was supplied at construction.
	ErrNoCompiler = errors.New("no compiler configured")
)
