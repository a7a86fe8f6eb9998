package shader

import "errors"

var (
	// ErrNoMatchingShader is returned by Catalog.GetShader when no catalog program combines
	// exactly the requested fragments with the requested vertex layout.
	ErrNoMatchingShader = errors.New("shader: no matching shader")

	// ErrAmbiguousShader is returned by Catalog.GetShader when more than one catalog program
	// satisfies a request. Catalogs are expected to hold unique combinations.
	ErrAmbiguousShader = errors.New("shader: ambiguous shader")

	// ErrUnknownParameter is returned when a parameter name is not declared by a fragment
	// or cannot be resolved through its program.
	ErrUnknownParameter = errors.New("shader: unknown parameter")

	// ErrMalformedCatalogStream is returned when a catalog stream is truncated or structurally
	// invalid. No partial catalog is produced.
	ErrMalformedCatalogStream = errors.New("shader: malformed catalog stream")

	// ErrMalformedFragmentStream is returned when a fragment interchange record is truncated
	// or structurally invalid.
	ErrMalformedFragmentStream = errors.New("shader: malformed fragment stream")
)

var errEmptyFragmentName = errors.New("empty fragment name")
