package shader

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ReadCatalog decodes a catalog stream. Each program blob is turned into a Program by loader;
// a nil loader selects LoadWGSLProgram. Any structural violation fails the whole read,
// including bytes left over after the last counted program.
//
// Parameters:
//   - r: the stream holding exactly one catalog
//   - loader: the program loader, or nil
//
// Returns:
//   - Catalog: the decoded catalog
//   - error: an error wrapping ErrMalformedCatalogStream for truncated or invalid streams,
//     or the loader's error
func ReadCatalog(r io.Reader, loader ProgramLoader) (Catalog, error) {
	if loader == nil {
		loader = LoadWGSLProgram
	}
	s := newStreamReader(r)

	count := s.count("program")
	programs := make([]*ProgramInstance, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		pi, err := readProgram(s, loader)
		if err != nil {
			return nil, fmt.Errorf("shader: catalog program %d: %w", i, err)
		}
		programs = append(programs, pi)
	}
	s.expectEOF("catalog")
	if s.err != nil {
		return nil, wrapStreamError(ErrMalformedCatalogStream, s.err)
	}

	common.Logger().Info("shader catalog loaded", slog.Int("programs", len(programs)))
	return NewCatalog(WithPrograms(programs...)), nil
}

func readProgram(s *streamReader, loader ProgramLoader) (*ProgramInstance, error) {
	label := s.string()
	blob := s.bytes(s.count("blob byte"))

	var constants []string
	constCount := s.count("renderer constant")
	for i := 0; i < constCount && s.err == nil; i++ {
		constants = append(constants, s.string())
	}

	fragCount := s.count("fragment")
	fragments := make([]FragmentLayout, 0, min(fragCount, 256))
	for i := 0; i < fragCount && s.err == nil; i++ {
		var fl FragmentLayout
		paramCount := s.count("parameter")
		for j := 0; j < paramCount && s.err == nil; j++ {
			fl.Parameters = append(fl.Parameters, s.string())
		}
		fl.MangledNamePrefix = s.string()
		fl.Name = s.string()
		fragments = append(fragments, fl)
	}

	elemCount := s.count("vertex element")
	layout := make(VertexLayout, 0, min(elemCount, 64))
	for i := 0; i < elemCount && s.err == nil; i++ {
		var e VertexElement
		e.UsageIndex = s.int32()
		e.Format = wgpu.VertexFormat(s.int32())
		e.Usage = VertexUsage(s.int32())
		layout = append(layout, e)
	}

	if s.err != nil {
		return nil, wrapStreamError(ErrMalformedCatalogStream, s.err)
	}

	program, err := loader(label, blob)
	if err != nil {
		return nil, fmt.Errorf("load program %q: %w", label, err)
	}
	pi, err := NewProgramInstance(program, constants, fragments, layout)
	if err != nil {
		return nil, fmt.Errorf("%w: program %q: %w", ErrMalformedCatalogStream, label, err)
	}
	return pi, nil
}

// WriteCatalog encodes every canonical program of c in catalog order. The catalog must have
// been built by this package.
//
// Parameters:
//   - w: the destination stream
//   - c: the catalog to encode
//
// Returns:
//   - error: any write error
func WriteCatalog(w io.Writer, c Catalog) error {
	impl, ok := c.(*catalog)
	if !ok {
		return fmt.Errorf("shader: cannot encode catalog of type %T", c)
	}
	s := newStreamWriter(w)

	s.int32(int32(len(impl.programs)))
	for _, pi := range impl.programs {
		blob := pi.program.Blob()
		s.string(pi.program.Label())
		s.int32(int32(len(blob)))
		s.bytes(blob)

		s.int32(int32(len(pi.constantNames)))
		for _, name := range pi.constantNames {
			s.string(name)
		}

		s.int32(int32(len(pi.fragments)))
		for _, f := range pi.fragments {
			s.int32(int32(len(f.paramNames)))
			for _, name := range f.paramNames {
				s.string(name)
			}
			s.string(f.prefix)
			s.string(f.name)
		}

		s.int32(int32(len(pi.layout)))
		for _, e := range pi.layout {
			s.int32(e.UsageIndex)
			s.int32(int32(e.Format))
			s.int32(int32(e.Usage))
		}
	}
	return s.flush()
}
