// annotations.go defines the @oxy: comment annotations recognised in WGSL programs.
// Annotations are single-line WGSL comments prefixed with @oxy: carrying metadata the
// WGSL grammar has no place for.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeSemantic binds a renderer semantic to a uniform parameter so the renderer
	// can fill it without knowing the parameter's mangled name.
	//
	// Syntax: //@oxy:semantic <Semantic> <parameter>
	//
	// Example: //@oxy:semantic WorldViewProjection vt_world_view_projection
	AnnotationTypeSemantic AnnotationType = "semantic"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments. For semantic: [0] = semantic, [1] = parameter.
	Args []string

	// Line is the 1-based source line of the annotation.
	Line int
}

// parseAnnotations scans every line of a WGSL source for annotations.
//
// Parameters:
//   - source: the raw WGSL source, comments intact
//
// Returns:
//   - []Annotation: the annotations in source order
//   - error: the first malformed annotation
func parseAnnotations(source string) ([]Annotation, error) {
	var out []Annotation
	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// parseAnnotation parses one source line. Lines that are not annotation comments return nil
// with no error.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return nil, nil
	}
	after, ok := strings.CutPrefix(strings.TrimSpace(comment), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeSemantic:
		if len(args) != 3 {
			return nil, fmt.Errorf("line %d: @oxy semantic annotation requires exactly two arguments (semantic, parameter)", lineNum)
		}
		return &Annotation{
			Type: AnnotationTypeSemantic,
			Args: args[1:],
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
