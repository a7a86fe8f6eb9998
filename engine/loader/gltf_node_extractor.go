package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// modelNode is one glTF node: a local transform, an optional mesh and child node indices.
type modelNode struct {
	name      string
	transform common.Transform
	mesh      int
	children  []int
}

// gltfNodeExtractorImpl is the implementation of the gltfNodeExtractor interface.
type gltfNodeExtractorImpl struct {
	parser gltfParser
}

// gltfNodeExtractor reads the node hierarchy of the default scene.
type gltfNodeExtractor interface {
	// ExtractNodes converts every node of the document and validates the hierarchy.
	//
	// Returns:
	//   - []modelNode: the nodes, indexed like doc.Nodes
	//   - []int: the root nodes of the default scene
	//   - error: error if a reference is out of range or a node has two parents
	ExtractNodes() ([]modelNode, []int, error)
}

var _ gltfNodeExtractor = &gltfNodeExtractorImpl{}

// newGLTFNodeExtractor creates a new node extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfNodeExtractor: the node extractor
func newGLTFNodeExtractor(parser gltfParser) gltfNodeExtractor {
	return &gltfNodeExtractorImpl{parser: parser}
}

func (e *gltfNodeExtractorImpl) ExtractNodes() ([]modelNode, []int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}

	nodes := make([]modelNode, len(doc.Nodes))
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}

	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		mn := modelNode{
			name:      n.Name,
			transform: gltfNodeTransform(n),
			mesh:      -1,
			children:  n.Children,
		}
		if mn.name == "" {
			mn.name = fmt.Sprintf("node_%d", i)
		}
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
				return nil, nil, fmt.Errorf("node %d: mesh %d out of range", i, *n.Mesh)
			}
			mn.mesh = *n.Mesh
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, nil, fmt.Errorf("node %d: child %d out of range", i, c)
			}
			if parent[c] >= 0 {
				return nil, nil, fmt.Errorf("node %d has two parents (%d and %d)", c, parent[c], i)
			}
			parent[c] = i
		}
		nodes[i] = mn
	}

	roots, err := e.sceneRoots(parent)
	if err != nil {
		return nil, nil, err
	}
	return nodes, roots, nil
}

// sceneRoots returns the root nodes of the default scene, the first scene when no default
// is set, or every parentless node when the document has no scenes.
func (e *gltfNodeExtractorImpl) sceneRoots(parent []int) ([]int, error) {
	doc := e.parser.Document()
	if len(doc.Scenes) == 0 {
		var roots []int
		for i, p := range parent {
			if p < 0 {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	sceneIndex := 0
	if doc.Scene != nil {
		sceneIndex = *doc.Scene
	}
	if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", sceneIndex)
	}
	roots := doc.Scenes[sceneIndex].Nodes
	for _, r := range roots {
		if r < 0 || r >= len(doc.Nodes) {
			return nil, fmt.Errorf("scene %d: node %d out of range", sceneIndex, r)
		}
		if parent[r] >= 0 {
			return nil, fmt.Errorf("scene %d: root node %d has parent %d", sceneIndex, r, parent[r])
		}
	}
	return roots, nil
}

// gltfNodeTransform converts a node's matrix or TRS properties into a Transform.
func gltfNodeTransform(node *gltfNode) common.Transform {
	if node.Matrix != nil {
		return common.DecomposeMatrix(*node.Matrix)
	}

	translation := [3]float32{0, 0, 0}
	rotation := [4]float32{0, 0, 0, 1}
	scale := [3]float32{1, 1, 1}
	if node.Translation != nil {
		translation = *node.Translation
	}
	if node.Rotation != nil {
		rotation = *node.Rotation
	}
	if node.Scale != nil {
		scale = *node.Scale
	}
	return common.TransformFromQuaternion(translation, rotation, scale)
}
