package shader

// CatalogBuilderOption is a functional option for configuring a Catalog.
type CatalogBuilderOption func(*catalog)

// WithPrograms appends canonical program instances to the catalog. The catalog takes
// ownership: the instances must not be used by the caller afterwards.
//
// Parameters:
//   - programs: the canonical instances in catalog order
//
// Returns:
//   - CatalogBuilderOption: a function that applies the programs
func WithPrograms(programs ...*ProgramInstance) CatalogBuilderOption {
	return func(c *catalog) {
		for _, p := range programs {
			if p == nil {
				panic("shader: nil program instance")
			}
			c.programs = append(c.programs, p)
		}
	}
}
