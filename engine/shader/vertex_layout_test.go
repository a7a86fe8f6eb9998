package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestVertexLayoutEqual(t *testing.T) {
	assert.True(t, positionNormal.Equal(VertexLayout{
		{Usage: VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
		{Usage: VertexUsageNormal, Format: wgpu.VertexFormatFloat32x3},
	}))
	assert.False(t, positionNormal.Equal(normalPosition))
	assert.False(t, positionNormal.Equal(positionNormal[:1]))

	withIndex := append(VertexLayout(nil), positionNormal...)
	withIndex[1].UsageIndex = 1
	assert.False(t, positionNormal.Equal(withIndex))

	withFormat := append(VertexLayout(nil), positionNormal...)
	withFormat[1].Format = wgpu.VertexFormatFloat32x4
	assert.False(t, positionNormal.Equal(withFormat))
}

func TestVertexLayoutBufferLayout(t *testing.T) {
	layout := VertexLayout{
		{Usage: VertexUsagePosition, Format: wgpu.VertexFormatFloat32x3},
		{Usage: VertexUsageTextureCoordinate, Format: wgpu.VertexFormatFloat32x2},
		{Usage: VertexUsageColor, Format: wgpu.VertexFormatFloat32x4},
	}
	bl := layout.BufferLayout()

	assert.Equal(t, uint64(36), bl.ArrayStride)
	assert.Equal(t, uint64(36), layout.Stride())
	assert.Equal(t, []uint64{0, 12, 20}, []uint64{bl.Attributes[0].Offset, bl.Attributes[1].Offset, bl.Attributes[2].Offset})
	assert.Equal(t, uint32(2), bl.Attributes[2].ShaderLocation)
	assert.True(t, layout.Has(VertexUsageColor))
	assert.False(t, layout.Has(VertexUsageNormal))
}
