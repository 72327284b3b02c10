package sceneprep

// PartitionRange tags a contiguous run of draw records with the passes
// that must render them.
type PartitionRange struct {
	// Begin is the first record index, inclusive.
	Begin uint32

	// End is one past the last record index.
	End uint32

	// Mask names the passes that render this range.
	Mask PassMask
}

// ScenePrepState holds the per-frame working collections the pipeline
// fills: the transform deduper, the draw-metadata vector, and the pass
// partitions. Reset between frames, retaining capacity.
type ScenePrepState struct {
	deduper    *transformDeduper
	drawData   []DrawMetadata
	partitions []PartitionRange
}

// NewScenePrepState creates an empty working set.
func NewScenePrepState() *ScenePrepState {
	return &ScenePrepState{
		deduper: newTransformDeduper(),
	}
}

// Reset clears all collections for the next frame.
func (s *ScenePrepState) Reset() {
	s.deduper.reset()
	s.drawData = s.drawData[:0]
	s.partitions = s.partitions[:0]
}

// DedupTransform returns the shared slot for a world matrix, allocating
// one (with its precomputed normal matrix) when no exact match exists.
func (s *ScenePrepState) DedupTransform(world []float32) TransformHandle {
	return s.deduper.dedup(world)
}

// TransformCount returns the number of deduped transform slots.
func (s *ScenePrepState) TransformCount() int {
	return s.deduper.count()
}

// Worlds returns the packed world matrices, 16 floats per slot.
func (s *ScenePrepState) Worlds() []float32 {
	return s.deduper.worlds
}

// Normals returns the packed normal matrices, 16 floats per slot.
func (s *ScenePrepState) Normals() []float32 {
	return s.deduper.normals
}

// Emit appends a draw record to the metadata vector.
func (s *ScenePrepState) Emit(record DrawMetadata) {
	s.drawData = append(s.drawData, record)
}

// DrawData returns the frame's draw records in emission order.
func (s *ScenePrepState) DrawData() []DrawMetadata {
	return s.drawData
}

// buildPartitions groups consecutive records sharing a mask into ranges.
// Ranges come out disjoint, sorted by Begin, and covering every record.
func (s *ScenePrepState) buildPartitions() []PartitionRange {
	s.partitions = s.partitions[:0]
	for i := 0; i < len(s.drawData); {
		mask := s.drawData[i].Flags
		j := i + 1
		for j < len(s.drawData) && s.drawData[j].Flags == mask {
			j++
		}
		s.partitions = append(s.partitions, PartitionRange{
			Begin: uint32(i),
			End:   uint32(j),
			Mask:  mask,
		})
		i = j
	}
	return s.partitions
}
