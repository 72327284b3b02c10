package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics/headless"
	"github.com/Carmen-Shannon/oxygen-core/engine/model"
	"github.com/Carmen-Shannon/oxygen-core/engine/upload"
)

// triangleBufferBytes builds the binary payload shared by the test documents:
// three vec3 float positions followed by three uint16 indices.
func triangleBufferBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, p := range positions {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, p))
	}
	indices := []uint16{0, 1, 2}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, indices))

	return buf.Bytes()
}

// triangleGLTF builds a minimal glTF JSON document with the triangle buffer
// embedded as a base64 data URI. The materials and primitives fragments are
// spliced in so tests can vary material setups.
func triangleGLTF(t *testing.T, materialsJSON, primitivesJSON string) string {
	t.Helper()

	payload := triangleBufferBytes(t)
	encoded := base64.StdEncoding.EncodeToString(payload)

	return fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{}],
		"meshes": [{"name": "tri", "primitives": %s}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
		"materials": %s
	}`, primitivesJSON, len(payload), encoded, materialsJSON)
}

const defaultPrimitives = `[{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]`

func TestLoadReaderBuildsGeometry(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	doc := triangleGLTF(t, `[{"name": "paint"}]`, defaultPrimitives)
	asset, err := l.LoadReader("tri_asset", strings.NewReader(doc), false)
	require.NoError(t, err)
	require.NotNil(t, asset)

	assert.Equal(t, "tri_asset", asset.Name)
	require.NotNil(t, asset.Geometry)
	require.Equal(t, 1, asset.Geometry.LODCount())

	mesh := asset.Geometry.MeshAt(0)
	require.NotNil(t, mesh)
	assert.Equal(t, uint32(3), mesh.VertexCount)
	assert.Equal(t, uint32(3), mesh.IndexCount)
	assert.Equal(t, VertexStride, mesh.VertexStride)
	assert.Len(t, mesh.VertexData, 3*int(VertexStride))
	require.Len(t, mesh.SubMeshes, 1)

	sm := &mesh.SubMeshes[0]
	assert.True(t, sm.Indexed())
	assert.Equal(t, uint32(0), sm.FirstIndex)
	assert.Equal(t, uint32(3), sm.IndexCount)
	assert.Equal(t, [3]float32{0, 0, 0}, sm.LocalBounds.Min)
	assert.Equal(t, [3]float32{1, 1, 0}, sm.LocalBounds.Max)

	require.Len(t, asset.Materials, 1)
	assert.Equal(t, "paint", asset.Materials[0].Name)
	assert.Same(t, asset.Materials[0], sm.Material)

	// CPU-only load: no GPU residency
	assert.Nil(t, asset.VertexBuffer)
	assert.Nil(t, asset.IndexBuffer)
	assert.Empty(t, asset.Tickets)
}

func TestGeneratedVertexAttributes(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	doc := triangleGLTF(t, `[{}]`, defaultPrimitives)
	asset, err := l.LoadReader("tri", strings.NewReader(doc), false)
	require.NoError(t, err)

	mesh := asset.Geometry.MeshAt(0)
	vertices := common.BytesToSlice[Vertex](mesh.VertexData)
	require.Len(t, vertices, 3)

	for i, v := range vertices {
		// Counter-clockwise triangle in the XY plane faces +Z
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal, "vertex %d normal", i)

		// No UVs: tangent generation degenerates to the default tangent
		assert.Equal(t, [4]float32{1, 0, 0, 1}, v.Tangent, "vertex %d tangent", i)

		// No COLOR_0 attribute: color defaults to white
		assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color, "vertex %d color", i)
	}

	indices := common.BytesToSlice[uint32](mesh.IndexData)
	assert.Equal(t, []uint32{0, 1, 2}, indices)
}

func TestMaterialDomainMapping(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	materials := `[
		{"name": "solid"},
		{"name": "cutout", "alphaMode": "MASK", "alphaCutoff": 0.25},
		{"name": "foliage", "alphaMode": "MASK"},
		{"name": "glass", "alphaMode": "BLEND"}
	]`
	primitives := `[
		{"attributes": {"POSITION": 0}, "indices": 1, "material": 0},
		{"attributes": {"POSITION": 0}, "indices": 1, "material": 1},
		{"attributes": {"POSITION": 0}, "indices": 1, "material": 2},
		{"attributes": {"POSITION": 0}, "indices": 1, "material": 3}
	]`

	asset, err := l.LoadReader("domains", strings.NewReader(triangleGLTF(t, materials, primitives)), false)
	require.NoError(t, err)
	require.Len(t, asset.Materials, 4)

	assert.Equal(t, model.MaterialDomainOpaque, asset.Materials[0].Domain)
	assert.Zero(t, asset.Materials[0].AlphaCutoff)

	assert.Equal(t, model.MaterialDomainMasked, asset.Materials[1].Domain)
	assert.InDelta(t, 0.25, asset.Materials[1].AlphaCutoff, 1e-6)

	// MASK without an explicit cutoff falls back to the glTF default
	assert.Equal(t, model.MaterialDomainMasked, asset.Materials[2].Domain)
	assert.InDelta(t, 0.5, asset.Materials[2].AlphaCutoff, 1e-6)

	assert.Equal(t, model.MaterialDomainTransparent, asset.Materials[3].Domain)

	mesh := asset.Geometry.MeshAt(0)
	require.Len(t, mesh.SubMeshes, 4)
	for i := range mesh.SubMeshes {
		assert.Same(t, asset.Materials[i], mesh.SubMeshes[i].Material, "submesh %d", i)
	}
}

func TestDefaultMaterialWhenNoneDefined(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	doc := triangleGLTF(t, `[]`, `[{"attributes": {"POSITION": 0}, "indices": 1}]`)
	asset, err := l.LoadReader("bare", strings.NewReader(doc), false)
	require.NoError(t, err)

	require.Len(t, asset.Materials, 1)
	assert.Equal(t, "default", asset.Materials[0].Name)
	assert.Equal(t, model.MaterialDomainOpaque, asset.Materials[0].Domain)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, asset.Materials[0].BaseColor)

	mesh := asset.Geometry.MeshAt(0)
	require.Len(t, mesh.SubMeshes, 1)
	assert.Same(t, asset.Materials[0], mesh.SubMeshes[0].Material)
}

func TestLoadReaderCachesByName(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	doc := triangleGLTF(t, `[{}]`, defaultPrimitives)
	first, err := l.LoadReader("cached", strings.NewReader(doc), false)
	require.NoError(t, err)

	// Second load with the same name must not re-parse; the reader is empty.
	second, err := l.LoadReader("cached", strings.NewReader(""), false)
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Same(t, first, l.Get("cached"))
	assert.Nil(t, l.Get("missing"))
	assert.Len(t, l.Assets(), 1)
}

func TestUnsupportedFormatRejected(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.Load("model.obj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported asset format")
}

func TestRequiredExtensionRejected(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	payload := triangleBufferBytes(t)
	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"extensionsRequired": ["KHR_draco_mesh_compression"],
		"meshes": [{"primitives": %s}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}]
	}`, defaultPrimitives, len(payload), base64.StdEncoding.EncodeToString(payload))

	_, err := l.LoadReader("draco", strings.NewReader(doc), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported required extensions")
}

func TestGLBContainerRoundTrip(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	payload := triangleBufferBytes(t)
	jsonDoc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"meshes": [{"primitives": %s}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": %d}],
		"materials": [{}]
	}`, defaultPrimitives, len(payload))

	glb := buildGLB(t, []byte(jsonDoc), payload)
	asset, err := l.LoadReader("container", bytes.NewReader(glb), true)
	require.NoError(t, err)

	mesh := asset.Geometry.MeshAt(0)
	assert.Equal(t, uint32(3), mesh.VertexCount)
	assert.Equal(t, uint32(3), mesh.IndexCount)
}

// buildGLB wraps a JSON document and binary payload in the GLB container
// format: 12-byte header, 4-padded JSON chunk, 4-padded BIN chunk.
func buildGLB(t *testing.T, jsonDoc, bin []byte) []byte {
	t.Helper()

	pad4 := func(data []byte, filler byte) []byte {
		for len(data)%4 != 0 {
			data = append(data, filler)
		}
		return data
	}
	jsonChunk := pad4(jsonDoc, ' ')
	binChunk := pad4(bin, 0)

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{
		Magic:   gltfGLBMagic,
		Version: gltfGLBVersion,
		Length:  uint32(total),
	}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{
		ChunkLength: uint32(len(jsonChunk)),
		ChunkType:   gltfGLBChunkJSON,
	}))
	out.Write(jsonChunk)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{
		ChunkLength: uint32(len(binChunk)),
		ChunkType:   gltfGLBChunkBIN,
	}))
	out.Write(binChunk)

	return out.Bytes()
}

func TestLoadWithGPUResidency(t *testing.T) {
	gfx := headless.NewGraphics()
	t.Cleanup(gfx.Shutdown)

	coord := upload.NewCoordinator(gfx)
	t.Cleanup(coord.Shutdown)

	l := NewLoader(BackendTypeGLTF, WithGraphics(gfx), WithUploads(coord))

	doc := triangleGLTF(t, `[{}]`, defaultPrimitives)
	asset, err := l.LoadReader("resident", strings.NewReader(doc), false)
	require.NoError(t, err)

	require.NotNil(t, asset.VertexBuffer)
	require.NotNil(t, asset.IndexBuffer)
	require.Len(t, asset.Tickets, 2)

	// Uploads are deferred until the coordinator flushes.
	for _, ticket := range asset.Tickets {
		assert.False(t, coord.IsComplete(ticket))
	}

	coord.Flush()

	for _, ticket := range asset.Tickets {
		assert.True(t, coord.IsComplete(ticket))
	}

	mesh := asset.Geometry.MeshAt(0)
	vb, ok := asset.VertexBuffer.(*headless.Buffer)
	require.True(t, ok)
	assert.Equal(t, mesh.VertexData, vb.Bytes())

	ib, ok := asset.IndexBuffer.(*headless.Buffer)
	require.True(t, ok)
	assert.Equal(t, mesh.IndexData, ib.Bytes())
}
