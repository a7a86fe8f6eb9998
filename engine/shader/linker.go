package shader

import (
	"fmt"
	"strings"
)

// RendererConstant declares one engine-supplied uniform of a linked program.
type RendererConstant struct {
	Semantic string
	DataType string
}

// hlslTypeAliases maps the effect-language type names fragments are authored with to WGSL.
var hlslTypeAliases = map[string]string{
	"float":    "f32",
	"float2":   "vec2<f32>",
	"float3":   "vec3<f32>",
	"float4":   "vec4<f32>",
	"float3x3": "mat3x3<f32>",
	"float4x4": "mat4x4<f32>",
	"int":      "i32",
	"int2":     "vec2<i32>",
	"int3":     "vec3<i32>",
	"int4":     "vec4<i32>",
	"uint":     "u32",
	"bool":     "u32",
}

// wgslType resolves a fragment data type to its WGSL spelling.
func wgslType(dataType string) string {
	if t, ok := hlslTypeAliases[dataType]; ok {
		return t
	}
	return dataType
}

// mangledPrefix is the prefix applied to the parameters of the fragment at index i.
func mangledPrefix(name string, i int) string {
	return fmt.Sprintf("%s%d_", name, i)
}

// Link combines fragments into one program instance. All parameters and renderer constants
// are packed into a single uniform block at group 0, fragment parameters mangled with
// "<Name><index>_"; every fragment texture gets a texture and sampler binding at group 1.
// The fragments' functions, vertex and pixel programs are appended in link order, the
// functions of a repeated fragment only once.
//
// Parameters:
//   - label: the program label
//   - fragments: the fragments in link order, names may repeat
//   - layout: the vertex layout the program consumes
//   - constants: the renderer constants the program exposes
//
// Returns:
//   - *ProgramInstance: the canonical instance, fragments without owners
//   - error: an error if the generated program cannot be parsed
func Link(label string, fragments []FragmentDescriptor, layout VertexLayout, constants ...RendererConstant) (*ProgramInstance, error) {
	var sb strings.Builder
	var fields, annotations []string
	layouts := make([]FragmentLayout, 0, len(fragments))
	semantics := make([]string, 0, len(constants))

	for _, c := range constants {
		fields = append(fields, fmt.Sprintf("\t%s: %s,", c.Semantic, wgslType(c.DataType)))
		semantics = append(semantics, c.Semantic)
	}

	binding := 0
	var textures []string
	for i, f := range fragments {
		prefix := mangledPrefix(f.Name(), i)
		fl := FragmentLayout{Name: f.Name(), MangledNamePrefix: prefix}
		for _, p := range f.Parameters() {
			fields = append(fields, fmt.Sprintf("\t%s%s: %s,", prefix, p.Name, wgslType(p.DataType)))
			if p.Semantic != "" {
				annotations = append(annotations, fmt.Sprintf("//@oxy:semantic %s %s%s", p.Semantic, prefix, p.Name))
			}
			fl.Parameters = append(fl.Parameters, p.Name)
		}
		for _, t := range f.Textures() {
			textures = append(textures,
				fmt.Sprintf("@group(1) @binding(%d) var %s%s: texture_2d<f32>;", binding, prefix, t.Name),
				fmt.Sprintf("@group(1) @binding(%d) var %s%sSampler: sampler;", binding+1, prefix, t.Name))
			binding += 2
			fl.Parameters = append(fl.Parameters, t.Name)
		}
		layouts = append(layouts, fl)
	}

	if len(fields) > 0 {
		sb.WriteString("struct ProgramUniforms {\n")
		sb.WriteString(strings.Join(fields, "\n"))
		sb.WriteString("\n}\n\n")
		for _, c := range constants {
			fmt.Fprintf(&sb, "//@oxy:semantic %s %s\n", c.Semantic, c.Semantic)
		}
		for _, a := range annotations {
			sb.WriteString(a)
			sb.WriteByte('\n')
		}
		sb.WriteString("@group(0) @binding(0) var<uniform> uniforms: ProgramUniforms;\n")
	}
	for _, t := range textures {
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	// Repeated fragments share one copy of their functions; identical program text is
	// emitted once.
	withFunctions := make(map[string]bool, len(fragments))
	emitted := make(map[string]bool)
	for _, f := range fragments {
		functions := f.Functions()
		if withFunctions[f.Name()] {
			functions = ""
		}
		withFunctions[f.Name()] = true
		for _, part := range []string{functions, f.VertexProgram(), f.PixelProgram()} {
			if part != "" && !emitted[part] {
				emitted[part] = true
				sb.WriteString("\n")
				sb.WriteString(part)
				sb.WriteString("\n")
			}
		}
	}

	program, err := NewWGSLProgram(label, sb.String())
	if err != nil {
		return nil, err
	}
	return NewProgramInstance(program, semantics, layouts, layout)
}
