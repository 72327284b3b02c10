package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
	"github.com/Carmen-Shannon/oxygen-core/engine/upload"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Asset is a loaded, engine-ready asset: geometry plus materials, with
// optional GPU-resident vertex and index buffers when the loader was
// built with a graphics backend and an upload coordinator.
type Asset struct {
	// Name is the asset's cache key.
	Name string

	// Geometry is the renderable geometry (single LOD from import).
	Geometry *model.Geometry

	// Materials are the asset's materials, indexed by submesh material slots.
	Materials []*model.Material

	// VertexBuffer is the GPU vertex buffer, nil when loading CPU-only.
	VertexBuffer graphics.Buffer

	// IndexBuffer is the GPU index buffer, nil when loading CPU-only
	// or when the asset has no indices.
	IndexBuffer graphics.Buffer

	// Tickets track the pending uploads of the GPU buffers. Empty when
	// loading CPU-only. Residency is reached once every ticket completes.
	Tickets []upload.Ticket
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	gfx     graphics.Graphics
	uploads upload.Coordinator

	assetCache map[string]*Asset

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D assets.
// It abstracts the file format (glTF, GLB, etc.) behind a generic backend and
// manages a cache of previously loaded assets. When built with a graphics
// backend and an upload coordinator, loaded assets also get GPU-resident
// vertex and index buffers with deferred uploads staged through the
// coordinator.
type Loader interface {
	// Load imports an asset file and caches the result.
	// If the asset is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb selects the
	// glTF backend).
	//
	// Parameters:
	//   - path: the file path to the asset file
	//
	// Returns:
	//   - *Asset: the loaded and cached asset
	//   - error: error if loading fails
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded asset
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *Asset: the cached asset or nil
	Get(name string) *Asset

	// Assets returns a snapshot of the asset cache.
	//
	// Returns:
	//   - map[string]*Asset: all cached assets keyed by name
	Assets() map[string]*Asset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		assetCache: make(map[string]*Asset),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Import(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	asset, err := l.assembleAsset(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.assetCache[path] = asset
	l.mu.Unlock()

	return asset, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	imported, err := l.backend.ImportReader(name, r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	asset, err := l.assembleAsset(imported)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.assetCache[name] = asset
	l.mu.Unlock()

	return asset, nil
}

func (l *loader) Get(name string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Asset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported asset format: %s", ext)
	}
}

// assembleAsset converts an importedAsset (CPU data) into an engine-ready Asset.
// All primitives are combined into a single mesh with one vertex and one index
// stream; each primitive becomes a SubMesh referencing its material. When the
// loader has a graphics backend and an upload coordinator, GPU buffers are
// created and their uploads staged as deferred requests.
//
// Parameters:
//   - imported: the CPU-side importedAsset containing mesh and material data
//
// Returns:
//   - *Asset: the engine-ready asset
//   - error: error if GPU resource creation or upload submission fails
func (l *loader) assembleAsset(imported *importedAsset) (*Asset, error) {
	var allVertices []Vertex
	var allIndices []uint32
	subMeshes := make([]model.SubMesh, 0, len(imported.Meshes))

	for i := range imported.Meshes {
		im := &imported.Meshes[i]
		baseVertex := uint32(len(allVertices))
		firstIndex := uint32(len(allIndices))

		allVertices = append(allVertices, im.Vertices...)

		// Reindex: offset each index by the running vertex count across primitives
		for _, idx := range im.Indices {
			allIndices = append(allIndices, idx+baseVertex)
		}

		subMeshes = append(subMeshes, model.SubMesh{
			Material:    imported.Materials[im.MaterialIndex],
			FirstIndex:  firstIndex,
			IndexCount:  uint32(len(im.Indices)),
			FirstVertex: baseVertex,
			VertexCount: uint32(len(im.Vertices)),
			LocalBounds: im.Bounds,
		})
	}

	mesh := &model.Mesh{
		Label:        imported.Name,
		VertexData:   common.SliceToBytes(allVertices),
		VertexStride: VertexStride,
		VertexCount:  uint32(len(allVertices)),
		IndexData:    common.SliceToBytes(allIndices),
		IndexCount:   uint32(len(allIndices)),
		SubMeshes:    subMeshes,
	}

	asset := &Asset{
		Name: imported.Name,
		Geometry: &model.Geometry{
			Label: imported.Name,
			LODs:  []*model.Mesh{mesh},
		},
		Materials: imported.Materials,
	}

	if l.gfx != nil && l.uploads != nil {
		if err := l.uploadMeshBuffers(asset, mesh); err != nil {
			return nil, fmt.Errorf("failed to upload mesh buffers for %q: %w", imported.Name, err)
		}
	}

	return asset, nil
}

// uploadMeshBuffers creates GPU vertex and index buffers for the combined
// mesh and stages their uploads as deferred requests. The resulting tickets
// are recorded on the asset so callers can gate rendering on residency.
func (l *loader) uploadMeshBuffers(asset *Asset, mesh *model.Mesh) error {
	vb, err := l.gfx.CreateBuffer(graphics.BufferDesc{
		Label: asset.Name + "_vertices",
		Size:  common.SizeBytes(len(mesh.VertexData)),
		Usage: graphics.BufferUsageVertex | graphics.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	asset.VertexBuffer = vb

	ticket := l.uploads.Submit(upload.Request{
		Kind:      upload.KindBuffer,
		DstBuffer: vb,
		Size:      common.SizeBytes(len(mesh.VertexData)),
		Data:      upload.DataSource{Bytes: mesh.VertexData},
		DebugName: asset.Name + "_vertices",
	})
	asset.Tickets = append(asset.Tickets, ticket)

	if len(mesh.IndexData) == 0 {
		return nil
	}

	ib, err := l.gfx.CreateBuffer(graphics.BufferDesc{
		Label: asset.Name + "_indices",
		Size:  common.SizeBytes(len(mesh.IndexData)),
		Usage: graphics.BufferUsageIndex | graphics.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("index buffer: %w", err)
	}
	asset.IndexBuffer = ib

	ticket = l.uploads.Submit(upload.Request{
		Kind:      upload.KindBuffer,
		DstBuffer: ib,
		Size:      common.SizeBytes(len(mesh.IndexData)),
		Data:      upload.DataSource{Bytes: mesh.IndexData},
		DebugName: asset.Name + "_indices",
	})
	asset.Tickets = append(asset.Tickets, ticket)

	return nil
}
