package sceneprep

import (
	"unsafe"
)

// DrawMetadata is the packed per-draw record passes read on the GPU. The
// field order, widths, and trailing padding are the GPU ABI; do not
// reorder.
type DrawMetadata struct {
	// TransformIndex is the slot in the worlds/normals SRVs.
	TransformIndex uint32

	// MaterialIndex is the slot in the material buffer.
	MaterialIndex uint32

	// FirstIndex is the starting index for indexed draws.
	FirstIndex uint32

	// IndexCount is the index count for indexed draws.
	IndexCount uint32

	// FirstVertex is the starting vertex for non-indexed draws.
	FirstVertex uint32

	// VertexCount is the vertex count for non-indexed draws.
	VertexCount uint32

	// InstanceCount is the number of instances (at least 1 for a valid
	// record).
	InstanceCount uint32

	// Flags names the passes that must render this record.
	Flags PassMask

	// IsIndexed is 1 for indexed draws, 0 otherwise.
	IsIndexed uint8

	_ [3]uint8
}

// DrawMetadataSize is the packed record size in bytes.
const DrawMetadataSize = uint32(unsafe.Sizeof(DrawMetadata{}))

// Valid reports whether the record draws anything: indexed records need
// indices, non-indexed need vertices, and both need instances.
func (d *DrawMetadata) Valid() bool {
	if d.InstanceCount == 0 {
		return false
	}
	if d.IsIndexed != 0 {
		return d.IndexCount > 0
	}
	return d.VertexCount > 0
}
