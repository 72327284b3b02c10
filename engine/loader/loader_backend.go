package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
)

// Vertex is the interleaved vertex layout produced by the loader.
// Attribute order matches the engine's static mesh input layout.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [4]float32
	TexCoord [2]float32
	Color    [4]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride uint32 = 64

// importedMesh is one extracted primitive before assembly into a model.Mesh.
type importedMesh struct {
	Name          string
	Vertices      []Vertex
	Indices       []uint32
	MaterialIndex int
	Bounds        common.AABB
}

// importedAsset is the backend-neutral result of importing a source file.
type importedAsset struct {
	Name      string
	Meshes    []importedMesh
	Materials []*model.Material
}

// loaderBackend defines the generic interface for importing assets from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Import performs a full asset import from the given file path.
	// This extracts meshes and materials.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *importedAsset: the imported asset data
	//   - error: error if importing fails
	Import(path string) (*importedAsset, error)

	// ImportReader imports an asset from a reader stream.
	//
	// Parameters:
	//   - name: the name to assign the asset
	//   - r: the reader providing asset data
	//   - isBinary: true if the reader provides the format's binary container, false for text-based formats
	//
	// Returns:
	//   - *importedAsset: the imported asset data
	//   - error: error if importing fails
	ImportReader(name string, r io.Reader, isBinary bool) (*importedAsset, error)
}
