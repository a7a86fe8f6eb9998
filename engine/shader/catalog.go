package shader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// catalog is the implementation of the Catalog interface.
type catalog struct {
	programs []*ProgramInstance
}

// Catalog holds the canonical precompiled program instances and hands out private clones of
// them. A catalog is read-only after construction; GetShader may be called concurrently.
type Catalog interface {
	// GetShader finds the program linking exactly the requested fragments over the requested
	// vertex layout and returns a private clone of it. Fragment names match as a multiset:
	// order is irrelevant and every duplicate name consumes a distinct fragment. The vertex
	// layout must match element by element, in order. In the clone every fragment is bound
	// to the owner of the request it consumed.
	//
	// Parameters:
	//   - requests: the fragment requests, one per slot
	//   - layout: the vertex layout of the geometry
	//
	// Returns:
	//   - *ProgramInstance: a clone with private parameter storage
	//   - error: ErrNoMatchingShader or ErrAmbiguousShader, wrapped with the request
	GetShader(requests []FragmentRequest, layout VertexLayout) (*ProgramInstance, error)

	// Len returns the number of canonical programs.
	Len() int

	// Describe returns the fragment names and vertex layout of every canonical program, in
	// catalog order.
	//
	// Returns:
	//   - []ProgramSummary: one summary per program
	Describe() []ProgramSummary
}

// ProgramSummary describes one canonical catalog program.
type ProgramSummary struct {
	Label     string
	Fragments []string
	Layout    VertexLayout
}

var _ Catalog = &catalog{}

// NewCatalog creates a Catalog with all specified options applied.
//
// Parameters:
//   - options: functional options supplying the canonical programs
//
// Returns:
//   - Catalog: the catalog
func NewCatalog(options ...CatalogBuilderOption) Catalog {
	c := &catalog{}
	for _, opt := range options {
		opt(c)
	}
	common.Logger().Info("shader catalog ready", slog.Int("programs", len(c.programs)))
	return c
}

func (c *catalog) GetShader(requests []FragmentRequest, layout VertexLayout) (*ProgramInstance, error) {
	var match *ProgramInstance
	for _, pi := range c.programs {
		if !pi.matches(requests, layout) {
			continue
		}
		if match != nil {
			err := fmt.Errorf("%w: fragments %v layout %s", ErrAmbiguousShader, requestNames(requests), layout)
			common.Logger().Warn("shader lookup failed", slog.Any("error", err))
			return nil, err
		}
		match = pi
	}
	if match == nil {
		err := fmt.Errorf("%w: fragments %v layout %s", ErrNoMatchingShader, requestNames(requests), layout)
		common.Logger().Warn("shader lookup failed", slog.Any("error", err))
		return nil, err
	}

	clone, err := match.clone(requests)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("shader matched",
		slog.String("program", match.program.Label()),
		slog.Any("fragments", requestNames(requests)))
	return clone, nil
}

func (c *catalog) Len() int {
	return len(c.programs)
}

func (c *catalog) Describe() []ProgramSummary {
	out := make([]ProgramSummary, len(c.programs))
	for i, pi := range c.programs {
		out[i] = ProgramSummary{
			Label:     pi.program.Label(),
			Fragments: pi.FragmentNames(),
			Layout:    append(VertexLayout(nil), pi.layout...),
		}
	}
	return out
}

func requestNames(requests []FragmentRequest) []string {
	names := make([]string, len(requests))
	for i, r := range requests {
		names[i] = r.Name
	}
	return names
}
