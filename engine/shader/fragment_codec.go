package shader

import (
	"io"
)

// ReadFragment decodes one fragment interchange record. The record carries every field of a
// descriptor except the sampler name and type of each texture and the shared functions
// block, which are left empty.
//
// Parameters:
//   - r: the stream positioned at the start of a record
//
// Returns:
//   - FragmentDescriptor: the decoded descriptor
//   - error: an error wrapping ErrMalformedFragmentStream if the record is truncated or invalid
func ReadFragment(r io.Reader) (FragmentDescriptor, error) {
	s := newStreamReader(r)

	f := &fragmentDescriptor{}
	f.name = s.string()
	f.class = FragmentClass(s.int32())
	f.parameters = readParameters(s)

	textureCount := s.count("texture")
	for i := 0; i < textureCount && s.err == nil; i++ {
		f.textures = append(f.textures, FragmentTexture{
			Name:        s.string(),
			MipFilter:   s.string(),
			MinFilter:   s.string(),
			MagFilter:   s.string(),
			AddressU:    s.string(),
			AddressV:    s.string(),
			Description: s.string(),
		})
	}

	f.vertexInputs = readParameters(s)
	f.interpolators = readParameters(s)
	f.vertexProgram = s.string()
	f.pixelProgram = s.string()

	if s.err != nil {
		return nil, wrapStreamError(ErrMalformedFragmentStream, s.err)
	}
	if f.name == "" {
		return nil, wrapStreamError(ErrMalformedFragmentStream, errEmptyFragmentName)
	}
	return NewFragmentDescriptor(f.name, f.class,
		WithParameters(f.parameters...),
		WithTextures(f.textures...),
		WithVertexInputs(f.vertexInputs...),
		WithInterpolators(f.interpolators...),
		WithVertexProgram(f.vertexProgram),
		WithPixelProgram(f.pixelProgram),
	), nil
}

// WriteFragment encodes a descriptor as one fragment interchange record.
//
// Parameters:
//   - w: the destination stream
//   - f: the descriptor to encode
//
// Returns:
//   - error: any write error
func WriteFragment(w io.Writer, f FragmentDescriptor) error {
	s := newStreamWriter(w)

	s.string(f.Name())
	s.int32(int32(f.Class()))
	writeParameters(s, f.Parameters())

	textures := f.Textures()
	s.int32(int32(len(textures)))
	for _, t := range textures {
		s.string(t.Name)
		s.string(t.MipFilter)
		s.string(t.MinFilter)
		s.string(t.MagFilter)
		s.string(t.AddressU)
		s.string(t.AddressV)
		s.string(t.Description)
	}

	writeParameters(s, f.VertexInputs())
	writeParameters(s, f.Interpolators())
	s.string(f.VertexProgram())
	s.string(f.PixelProgram())
	return s.flush()
}

func readParameters(s *streamReader) []FragmentParameter {
	n := s.count("parameter")
	var params []FragmentParameter
	for i := 0; i < n && s.err == nil; i++ {
		params = append(params, FragmentParameter{
			DataType:    s.string(),
			Name:        s.string(),
			Semantic:    s.string(),
			Description: s.string(),
		})
	}
	return params
}

func writeParameters(s *streamWriter, params []FragmentParameter) {
	s.int32(int32(len(params)))
	for _, p := range params {
		s.string(p.DataType)
		s.string(p.Name)
		s.string(p.Semantic)
		s.string(p.Description)
	}
}
