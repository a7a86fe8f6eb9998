package render_state

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults is the table of per-axis default values. It is built once, passed by reference
// to whatever seeds state stacks, and never mutated afterwards.
type Defaults struct {
	Collection
}

// NewDefaults returns the built-in default table:
//   - alpha: blending off, src_alpha / one_minus_src_alpha, add
//   - cull: enabled, counter-clockwise front faces, back faces culled
//   - polygon offset: off, zero scale and bias
//   - stencil: off, always, reference 0, full masks, keep on every outcome
//   - wireframe: off
//   - depth buffer: test and write enabled, less_equal
//
// Returns:
//   - *Defaults: a fresh default table
func NewDefaults() *Defaults {
	return &Defaults{Collection{
		Alpha: AlphaState{
			BlendEnabled: false,
			SrcBlend:     wgpu.BlendFactorSrcAlpha,
			DstBlend:     wgpu.BlendFactorOneMinusSrcAlpha,
			Operation:    wgpu.BlendOperationAdd,
		},
		Cull: CullState{
			Enabled:   true,
			FrontFace: wgpu.FrontFaceCCW,
			Mode:      wgpu.CullModeBack,
		},
		PolygonOffset: PolygonOffsetState{},
		Stencil: StencilState{
			Enabled:     false,
			Compare:     wgpu.CompareFunctionAlways,
			Reference:   0,
			ReadMask:    0xFFFFFFFF,
			WriteMask:   0xFFFFFFFF,
			OnFail:      wgpu.StencilOperationKeep,
			OnDepthFail: wgpu.StencilOperationKeep,
			OnPass:      wgpu.StencilOperationKeep,
		},
		Wireframe: WireframeState{},
		DepthBuffer: DepthBufferState{
			Enabled:  true,
			Writable: true,
			Compare:  wgpu.CompareFunctionLessEqual,
		},
	}}
}

// defaultsDocument is the on-disk shape of a defaults table. Every field is optional and
// overlays the built-in defaults.
type defaultsDocument struct {
	Alpha *struct {
		BlendEnabled *bool   `yaml:"blend_enabled" toml:"blend_enabled"`
		SrcBlend     *string `yaml:"src_blend" toml:"src_blend"`
		DstBlend     *string `yaml:"dst_blend" toml:"dst_blend"`
		Operation    *string `yaml:"operation" toml:"operation"`
	} `yaml:"alpha" toml:"alpha"`
	Cull *struct {
		Enabled   *bool   `yaml:"enabled" toml:"enabled"`
		FrontFace *string `yaml:"front_face" toml:"front_face"`
		Mode      *string `yaml:"mode" toml:"mode"`
	} `yaml:"cull" toml:"cull"`
	PolygonOffset *struct {
		FillEnabled *bool    `yaml:"fill_enabled" toml:"fill_enabled"`
		Scale       *float32 `yaml:"scale" toml:"scale"`
		Bias        *float32 `yaml:"bias" toml:"bias"`
	} `yaml:"polygon_offset" toml:"polygon_offset"`
	Stencil *struct {
		Enabled     *bool   `yaml:"enabled" toml:"enabled"`
		Compare     *string `yaml:"compare" toml:"compare"`
		Reference   *uint32 `yaml:"reference" toml:"reference"`
		ReadMask    *uint32 `yaml:"read_mask" toml:"read_mask"`
		WriteMask   *uint32 `yaml:"write_mask" toml:"write_mask"`
		OnFail      *string `yaml:"on_fail" toml:"on_fail"`
		OnDepthFail *string `yaml:"on_depth_fail" toml:"on_depth_fail"`
		OnPass      *string `yaml:"on_pass" toml:"on_pass"`
	} `yaml:"stencil" toml:"stencil"`
	Wireframe *struct {
		Enabled *bool `yaml:"enabled" toml:"enabled"`
	} `yaml:"wireframe" toml:"wireframe"`
	DepthBuffer *struct {
		Enabled  *bool   `yaml:"enabled" toml:"enabled"`
		Writable *bool   `yaml:"writable" toml:"writable"`
		Compare  *string `yaml:"compare" toml:"compare"`
	} `yaml:"depth_buffer" toml:"depth_buffer"`
}

// LoadDefaultsYAML builds a default table from a YAML document. Unknown keys and unknown
// enum names are errors; omitted keys keep their built-in values.
//
// Parameters:
//   - r: the YAML document
//
// Returns:
//   - *Defaults: the resulting table
//   - error: a decode or validation error
func LoadDefaultsYAML(r io.Reader) (*Defaults, error) {
	var doc defaultsDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("render_state: decode yaml defaults: %w", err)
	}
	return doc.apply(NewDefaults())
}

// LoadDefaultsTOML builds a default table from a TOML document. Unknown keys and unknown
// enum names are errors; omitted keys keep their built-in values.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - *Defaults: the resulting table
//   - error: a decode or validation error
func LoadDefaultsTOML(r io.Reader) (*Defaults, error) {
	var doc defaultsDocument
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&doc); err != nil {
		return nil, fmt.Errorf("render_state: decode toml defaults: %w", err)
	}
	return doc.apply(NewDefaults())
}

// MarshalYAMLDocument renders the table as a YAML document LoadDefaultsYAML accepts.
//
// Returns:
//   - []byte: the YAML document
//   - error: an encode error
func (d *Defaults) MarshalYAMLDocument() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.document()); err != nil {
		return nil, fmt.Errorf("render_state: encode yaml defaults: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTOMLDocument renders the table as a TOML document LoadDefaultsTOML accepts.
//
// Returns:
//   - []byte: the TOML document
//   - error: an encode error
func (d *Defaults) MarshalTOMLDocument() ([]byte, error) {
	out, err := toml.Marshal(d.document())
	if err != nil {
		return nil, fmt.Errorf("render_state: encode toml defaults: %w", err)
	}
	return out, nil
}

func (doc *defaultsDocument) apply(d *Defaults) (*Defaults, error) {
	var errs []error
	enum := func(dst any, name *string, table string) {
		if name == nil {
			return
		}
		if err := lookupEnum(dst, *name, table); err != nil {
			errs = append(errs, err)
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}

	if a := doc.Alpha; a != nil {
		setBool(&d.Alpha.BlendEnabled, a.BlendEnabled)
		enum(&d.Alpha.SrcBlend, a.SrcBlend, "alpha.src_blend")
		enum(&d.Alpha.DstBlend, a.DstBlend, "alpha.dst_blend")
		enum(&d.Alpha.Operation, a.Operation, "alpha.operation")
	}
	if c := doc.Cull; c != nil {
		setBool(&d.Cull.Enabled, c.Enabled)
		enum(&d.Cull.FrontFace, c.FrontFace, "cull.front_face")
		enum(&d.Cull.Mode, c.Mode, "cull.mode")
	}
	if p := doc.PolygonOffset; p != nil {
		setBool(&d.PolygonOffset.FillEnabled, p.FillEnabled)
		if p.Scale != nil {
			d.PolygonOffset.Scale = *p.Scale
		}
		if p.Bias != nil {
			d.PolygonOffset.Bias = *p.Bias
		}
	}
	if s := doc.Stencil; s != nil {
		setBool(&d.Stencil.Enabled, s.Enabled)
		enum(&d.Stencil.Compare, s.Compare, "stencil.compare")
		if s.Reference != nil {
			d.Stencil.Reference = *s.Reference
		}
		if s.ReadMask != nil {
			d.Stencil.ReadMask = *s.ReadMask
		}
		if s.WriteMask != nil {
			d.Stencil.WriteMask = *s.WriteMask
		}
		enum(&d.Stencil.OnFail, s.OnFail, "stencil.on_fail")
		enum(&d.Stencil.OnDepthFail, s.OnDepthFail, "stencil.on_depth_fail")
		enum(&d.Stencil.OnPass, s.OnPass, "stencil.on_pass")
	}
	if w := doc.Wireframe; w != nil {
		setBool(&d.Wireframe.Enabled, w.Enabled)
	}
	if z := doc.DepthBuffer; z != nil {
		setBool(&d.DepthBuffer.Enabled, z.Enabled)
		setBool(&d.DepthBuffer.Writable, z.Writable)
		enum(&d.DepthBuffer.Compare, z.Compare, "depth_buffer.compare")
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("render_state: invalid defaults: %w", err)
	}
	return d, nil
}

// document converts the table into its fully populated on-disk shape.
func (d *Defaults) document() map[string]map[string]any {
	return map[string]map[string]any{
		"alpha": {
			"blend_enabled": d.Alpha.BlendEnabled,
			"src_blend":     enumName(blendFactors, d.Alpha.SrcBlend),
			"dst_blend":     enumName(blendFactors, d.Alpha.DstBlend),
			"operation":     enumName(blendOperations, d.Alpha.Operation),
		},
		"cull": {
			"enabled":    d.Cull.Enabled,
			"front_face": enumName(frontFaces, d.Cull.FrontFace),
			"mode":       enumName(cullModes, d.Cull.Mode),
		},
		"polygon_offset": {
			"fill_enabled": d.PolygonOffset.FillEnabled,
			"scale":        d.PolygonOffset.Scale,
			"bias":         d.PolygonOffset.Bias,
		},
		"stencil": {
			"enabled":       d.Stencil.Enabled,
			"compare":       enumName(compareFunctions, d.Stencil.Compare),
			"reference":     d.Stencil.Reference,
			"read_mask":     d.Stencil.ReadMask,
			"write_mask":    d.Stencil.WriteMask,
			"on_fail":       enumName(stencilOperations, d.Stencil.OnFail),
			"on_depth_fail": enumName(stencilOperations, d.Stencil.OnDepthFail),
			"on_pass":       enumName(stencilOperations, d.Stencil.OnPass),
		},
		"wireframe": {
			"enabled": d.Wireframe.Enabled,
		},
		"depth_buffer": {
			"enabled":  d.DepthBuffer.Enabled,
			"writable": d.DepthBuffer.Writable,
			"compare":  enumName(compareFunctions, d.DepthBuffer.Compare),
		},
	}
}

var blendFactors = map[string]wgpu.BlendFactor{
	"zero":                wgpu.BlendFactorZero,
	"one":                 wgpu.BlendFactorOne,
	"src":                 wgpu.BlendFactorSrc,
	"one_minus_src":       wgpu.BlendFactorOneMinusSrc,
	"src_alpha":           wgpu.BlendFactorSrcAlpha,
	"one_minus_src_alpha": wgpu.BlendFactorOneMinusSrcAlpha,
	"dst":                 wgpu.BlendFactorDst,
	"one_minus_dst":       wgpu.BlendFactorOneMinusDst,
	"dst_alpha":           wgpu.BlendFactorDstAlpha,
	"one_minus_dst_alpha": wgpu.BlendFactorOneMinusDstAlpha,
}

var blendOperations = map[string]wgpu.BlendOperation{
	"add":              wgpu.BlendOperationAdd,
	"subtract":         wgpu.BlendOperationSubtract,
	"reverse_subtract": wgpu.BlendOperationReverseSubtract,
	"min":              wgpu.BlendOperationMin,
	"max":              wgpu.BlendOperationMax,
}

var compareFunctions = map[string]wgpu.CompareFunction{
	"never":         wgpu.CompareFunctionNever,
	"less":          wgpu.CompareFunctionLess,
	"less_equal":    wgpu.CompareFunctionLessEqual,
	"greater":       wgpu.CompareFunctionGreater,
	"greater_equal": wgpu.CompareFunctionGreaterEqual,
	"equal":         wgpu.CompareFunctionEqual,
	"not_equal":     wgpu.CompareFunctionNotEqual,
	"always":        wgpu.CompareFunctionAlways,
}

var stencilOperations = map[string]wgpu.StencilOperation{
	"keep":            wgpu.StencilOperationKeep,
	"zero":            wgpu.StencilOperationZero,
	"replace":         wgpu.StencilOperationReplace,
	"invert":          wgpu.StencilOperationInvert,
	"increment_clamp": wgpu.StencilOperationIncrementClamp,
	"decrement_clamp": wgpu.StencilOperationDecrementClamp,
	"increment_wrap":  wgpu.StencilOperationIncrementWrap,
	"decrement_wrap":  wgpu.StencilOperationDecrementWrap,
}

var cullModes = map[string]wgpu.CullMode{
	"none":  wgpu.CullModeNone,
	"front": wgpu.CullModeFront,
	"back":  wgpu.CullModeBack,
}

var frontFaces = map[string]wgpu.FrontFace{
	"ccw": wgpu.FrontFaceCCW,
	"cw":  wgpu.FrontFaceCW,
}

// lookupEnum resolves a document enum name into dst, which points at one of the wgpu enum types.
func lookupEnum(dst any, name, field string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	ok := false
	switch p := dst.(type) {
	case *wgpu.BlendFactor:
		*p, ok = blendFactors[key]
	case *wgpu.BlendOperation:
		*p, ok = blendOperations[key]
	case *wgpu.CompareFunction:
		*p, ok = compareFunctions[key]
	case *wgpu.StencilOperation:
		*p, ok = stencilOperations[key]
	case *wgpu.CullMode:
		*p, ok = cullModes[key]
	case *wgpu.FrontFace:
		*p, ok = frontFaces[key]
	default:
		panic(fmt.Sprintf("render_state: no enum table for %T", dst))
	}
	if !ok {
		return fmt.Errorf("%s: unknown value %q", field, name)
	}
	return nil
}

func enumName[T comparable](table map[string]T, v T) string {
	for name, candidate := range table {
		if candidate == v {
			return name
		}
	}
	return ""
}
