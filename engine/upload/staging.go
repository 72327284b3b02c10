package upload

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/common"
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
)

// Alignment conventions of the upload path.
const (
	// TextureRowPitchAlignment is the row stride granularity for texture
	// copies out of linear staging memory.
	TextureRowPitchAlignment = 256

	// TexturePlacementAlignment is the start-of-subresource alignment for
	// texture copy source offsets.
	TexturePlacementAlignment = 512

	// BufferCopyAlignment is the minimum alignment for buffer copy source
	// offsets.
	BufferCopyAlignment = 16
)

// stagingBank is one frame slot's partition of the staging ring: a simple
// head allocator over a fixed range. Allocation fails when the bank is full
// even when other banks have free bytes; there is no defragmentation.
type stagingBank struct {
	base uint64
	size uint64
	head uint64
}

// stagingAllocation is a contiguous sub-range of the staging ring handed to
// one request or transient buffer.
type stagingAllocation struct {
	offset common.SizeBytes
	size   common.SizeBytes
}

// stagingRing owns one large host-visible buffer partitioned into
// frames-in-flight banks. Single producer (frame thread); banks reset when
// their slot cycles.
type stagingRing struct {
	buffer graphics.Buffer
	memory []byte
	banks  []stagingBank
}

// newStagingRing creates the ring buffer and maps it persistently.
//
// Parameters:
//   - gfx: the backend used to create the host-visible buffer
//   - bankSize: byte capacity of each frame slot's bank
//   - framesInFlight: number of banks
//
// Returns:
//   - *stagingRing: the created ring
//   - error: an error if the backing buffer could not be created or mapped
func newStagingRing(gfx graphics.Graphics, bankSize common.SizeBytes, framesInFlight uint32) (*stagingRing, error) {
	total := uint64(bankSize) * uint64(framesInFlight)
	buf, err := gfx.CreateBuffer(graphics.BufferDesc{
		Label: "upload-staging-ring",
		Size:  common.SizeBytes(total),
		Usage: graphics.BufferUsageMapWrite | graphics.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("upload: staging ring creation failed: %w", err)
	}

	memory, err := buf.Map()
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("upload: staging ring map failed: %w", err)
	}

	banks := make([]stagingBank, framesInFlight)
	for i := range banks {
		banks[i] = stagingBank{
			base: uint64(i) * uint64(bankSize),
			size: uint64(bankSize),
		}
	}

	return &stagingRing{
		buffer: buf,
		memory: memory,
		banks:  banks,
	}, nil
}

// allocate reserves size bytes in the given slot's bank at the requested
// alignment.
//
// Parameters:
//   - slot: the active frame slot
//   - size: the byte count to reserve
//   - alignment: the start alignment (power of two not required)
//
// Returns:
//   - stagingAllocation: the reserved range
//   - *Error: ErrorStagingAllocFailed when the bank cannot fit the range
func (r *stagingRing) allocate(slot common.FrameSlot, size common.SizeBytes, alignment uint64) (stagingAllocation, *Error) {
	if int(slot) >= len(r.banks) {
		return stagingAllocation{}, newError(ErrorStagingAllocFailed, "slot %d out of range", slot)
	}

	bank := &r.banks[slot]
	start := common.AlignUp(bank.base+bank.head, alignment)
	end := start + uint64(size)
	if end > bank.base+bank.size {
		return stagingAllocation{}, newError(ErrorStagingAllocFailed,
			"bank %d full: need %s at offset %d, capacity %d", slot, size, start-bank.base, bank.size)
	}

	bank.head = end - bank.base
	return stagingAllocation{
		offset: common.SizeBytes(start),
		size:   size,
	}, nil
}

// mark returns the current head of the slot's bank. Callers capture it
// before an allocation so a request that fails after allocating can hand
// the bytes back with rollback.
func (r *stagingRing) mark(slot common.FrameSlot) uint64 {
	if int(slot) >= len(r.banks) {
		return 0
	}
	return r.banks[slot].head
}

// rollback restores a bank's head to a previously captured mark. The bank
// is a head allocator, so this is only valid when every allocation made
// after the mark is being abandoned.
//
// Parameters:
//   - slot: the frame slot whose bank rolls back
//   - head: the value returned by mark before the abandoned allocation
func (r *stagingRing) rollback(slot common.FrameSlot, head uint64) {
	if int(slot) >= len(r.banks) {
		return
	}
	if head < r.banks[slot].head {
		r.banks[slot].head = head
	}
}

// span returns the writable staging memory of an allocation.
func (r *stagingRing) span(a stagingAllocation) []byte {
	return r.memory[a.offset : uint64(a.offset)+uint64(a.size)]
}

// reset recycles a bank when its frame slot cycles. Allocations handed out
// from the bank must no longer be referenced by in-flight GPU work.
//
// Parameters:
//   - slot: the frame slot whose bank resets
func (r *stagingRing) reset(slot common.FrameSlot) {
	if int(slot) >= len(r.banks) {
		return
	}
	r.banks[slot].head = 0
}

// bytesInUse returns the current head of the slot's bank, for diagnostics.
func (r *stagingRing) bytesInUse(slot common.FrameSlot) common.SizeBytes {
	if int(slot) >= len(r.banks) {
		return 0
	}
	return common.SizeBytes(r.banks[slot].head)
}

// release destroys the ring's backing buffer.
func (r *stagingRing) release() {
	if r.buffer != nil {
		r.buffer.Unmap()
		r.buffer.Release()
		r.buffer = nil
		r.memory = nil
	}
}
