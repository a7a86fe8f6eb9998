package shader

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexUsage names the role of one vertex element.
type VertexUsage int32

const (
	VertexUsagePosition VertexUsage = iota
	VertexUsageColor
	VertexUsageTextureCoordinate
	VertexUsageNormal
	VertexUsageBinormal
	VertexUsageTangent
	VertexUsageBlendIndices
	VertexUsageBlendWeight
	VertexUsageDepth
	VertexUsageFog
	VertexUsagePointSize
	VertexUsageSample
	VertexUsageTessellateFactor
)

var vertexUsageNames = [...]string{
	"Position",
	"Color",
	"TextureCoordinate",
	"Normal",
	"Binormal",
	"Tangent",
	"BlendIndices",
	"BlendWeight",
	"Depth",
	"Fog",
	"PointSize",
	"Sample",
	"TessellateFactor",
}

func (u VertexUsage) String() string {
	if u >= 0 && int(u) < len(vertexUsageNames) {
		return vertexUsageNames[u]
	}
	return fmt.Sprintf("VertexUsage(%d)", int32(u))
}

// vertexFormatSizes maps the vertex formats a layout may carry to their byte size.
var vertexFormatSizes = map[wgpu.VertexFormat]uint64{
	wgpu.VertexFormatFloat32:   4,
	wgpu.VertexFormatFloat32x2: 8,
	wgpu.VertexFormatFloat32x3: 12,
	wgpu.VertexFormatFloat32x4: 16,
	wgpu.VertexFormatSint32:    4,
	wgpu.VertexFormatSint32x2:  8,
	wgpu.VertexFormatSint32x3:  12,
	wgpu.VertexFormatSint32x4:  16,
	wgpu.VertexFormatUint32:    4,
	wgpu.VertexFormatUint32x2:  8,
	wgpu.VertexFormatUint32x3:  12,
	wgpu.VertexFormatUint32x4:  16,
	wgpu.VertexFormatFloat16x2: 4,
	wgpu.VertexFormatFloat16x4: 8,
}

// VertexElement describes one attribute of an interleaved vertex.
type VertexElement struct {
	Usage      VertexUsage
	UsageIndex int32
	Format     wgpu.VertexFormat
}

// VertexLayout is the ordered list of elements making up one vertex. Two layouts are equal
// only when they hold the same elements in the same order.
type VertexLayout []VertexElement

// Equal reports whether both layouts have the same length and element-wise equal
// (usage, usage index, format) triples.
//
// Parameters:
//   - other: the layout to compare against
//
// Returns:
//   - bool: true if the layouts are identical in content and order
func (l VertexLayout) Equal(other VertexLayout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Has reports whether the layout contains an element with the given usage.
func (l VertexLayout) Has(usage VertexUsage) bool {
	for _, e := range l {
		if e.Usage == usage {
			return true
		}
	}
	return false
}

// Stride returns the byte size of one interleaved vertex.
func (l VertexLayout) Stride() uint64 {
	var stride uint64
	for _, e := range l {
		stride += vertexFormatSizes[e.Format]
	}
	return stride
}

// BufferLayout converts the layout into a single interleaved wgpu.VertexBufferLayout with
// sequential offsets. Shader locations follow element order.
//
// Returns:
//   - wgpu.VertexBufferLayout: the buffer layout for pipeline creation
func (l VertexLayout) BufferLayout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, len(l))
	var offset uint64
	for i, e := range l {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         e.Format,
			Offset:         offset,
			ShaderLocation: uint32(i),
		})
		offset += vertexFormatSizes[e.Format]
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

func (l VertexLayout) String() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = fmt.Sprintf("%s%d:%d", e.Usage, e.UsageIndex, uint32(e.Format))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
