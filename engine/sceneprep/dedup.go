package sceneprep

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxygen-core/common"
)

// TransformHandle indexes a slot in the frame's deduped transform set.
type TransformHandle uint32

// fingerprintGrid quantizes matrix elements before hashing so that
// float noise below this granularity lands in the same bucket. Equality
// is still exact; the fingerprint only narrows the candidate set.
const fingerprintGrid = 1.0 / 4096.0

// transformDeduper collapses identical world matrices into shared slots
// and precomputes the normal matrix per slot on allocation.
type transformDeduper struct {
	// worlds and normals store 16 floats per slot, column-major.
	worlds  []float32
	normals []float32

	buckets map[uint64][]TransformHandle
}

func newTransformDeduper() *transformDeduper {
	return &transformDeduper{
		buckets: make(map[uint64][]TransformHandle),
	}
}

// fingerprint hashes the matrix rounded onto the quantization grid.
func fingerprint(m []float32) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, v := range m[:16] {
		rounded := math32.Round(v/fingerprintGrid) * fingerprintGrid
		binary.LittleEndian.PutUint32(buf[:], math32.Float32bits(rounded))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// matrixEqual compares 16 elements exactly.
func matrixEqual(a, b []float32) bool {
	for i := 0; i < 16; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// dedup returns the slot storing an exact copy of world, appending a new
// slot (with precomputed normal matrix) when none matches.
func (d *transformDeduper) dedup(world []float32) TransformHandle {
	fp := fingerprint(world)
	for _, handle := range d.buckets[fp] {
		base := int(handle) * 16
		if matrixEqual(d.worlds[base:base+16], world) {
			return handle
		}
	}

	handle := TransformHandle(len(d.worlds) / 16)
	d.worlds = append(d.worlds, world[:16]...)

	normal := make([]float32, 16)
	common.NormalMatrix(normal, world)
	d.normals = append(d.normals, normal...)

	d.buckets[fp] = append(d.buckets[fp], handle)
	return handle
}

// count returns the number of allocated slots.
func (d *transformDeduper) count() int {
	return len(d.worlds) / 16
}

// reset clears all slots for the next frame, keeping capacity.
func (d *transformDeduper) reset() {
	d.worlds = d.worlds[:0]
	d.normals = d.normals[:0]
	clear(d.buckets)
}
