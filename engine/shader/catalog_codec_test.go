package shader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRoundTrip(t *testing.T) {
	c := basicCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, c))

	decoded, err := ReadCatalog(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, c.Describe(), decoded.Describe())

	var again bytes.Buffer
	require.NoError(t, WriteCatalog(&again, decoded))
	assert.Equal(t, buf.Bytes(), again.Bytes())

	owner := &testOwner{name: "DirectionalLight", color: [4]float32{0.5, 0.5, 0.5, 1}}
	pi, err := decoded.GetShader([]FragmentRequest{
		{Name: "VertexPassThru"},
		{Name: "BasicMaterial"},
		{Name: "DirectionalLight", Owner: owner},
		{Name: "PixelFinal"},
	}, positionNormal)
	require.NoError(t, err)
	require.NoError(t, pi.SetParameterValues())
	assert.Equal(t, []string{"World", "WorldViewProjection"}, pi.RendererConstants())
}

func TestReadCatalogEmpty(t *testing.T) {
	c, err := ReadCatalog(bytes.NewReader([]byte{0, 0, 0, 0}), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestReadCatalogRejectsTruncatedStreams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, basicCatalog(t)))
	data := buf.Bytes()

	for _, n := range []int{0, 3, 4, 10, len(data) / 2, len(data) - 1} {
		_, err := ReadCatalog(bytes.NewReader(data[:n]), nil)
		assert.ErrorIs(t, err, ErrMalformedCatalogStream, "prefix of %d bytes", n)
	}
}

func TestReadCatalogRejectsNegativeCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(-1)))

	_, err := ReadCatalog(&buf, nil)
	assert.ErrorIs(t, err, ErrMalformedCatalogStream)
}

func TestReadCatalogRejectsUnknownFragmentParameters(t *testing.T) {
	var buf bytes.Buffer
	s := newStreamWriter(&buf)
	source := "struct U { A0_x: f32, }\n@group(0) @binding(0) var<uniform> u: U;\n"
	s.int32(1)
	s.string("p")
	s.int32(int32(len(source)))
	s.bytes([]byte(source))
	s.int32(0)
	s.int32(1)
	s.int32(1)
	s.string("missing")
	s.string("A0_")
	s.string("A")
	s.int32(0)
	require.NoError(t, s.flush())

	_, err := ReadCatalog(&buf, nil)
	assert.ErrorIs(t, err, ErrMalformedCatalogStream)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestReadCatalogPropagatesLoaderErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, basicCatalog(t)))

	boom := errors.New("boom")
	_, err := ReadCatalog(&buf, func(string, []byte) (Program, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestReadCatalogRejectsTrailingData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, basicCatalog(t)))
	buf.Write([]byte{1, 2, 3, 4, 5, 6, 7})

	_, err := ReadCatalog(&buf, nil)
	assert.ErrorIs(t, err, ErrMalformedCatalogStream)
}

func TestReadCatalogRejectsUndercountedPrograms(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCatalog(&buf, basicCatalog(t)))
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data[:4], 1)

	_, err := ReadCatalog(bytes.NewReader(data), nil)
	assert.ErrorIs(t, err, ErrMalformedCatalogStream)
}
