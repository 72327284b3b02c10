package model

import (
	"github.com/Carmen-Shannon/oxygen-core/common"
)

// LODContext carries the per-frame metrics a policy selects against.
type LODContext struct {
	// Distance is |camera - sphere.center| / sphere.radius.
	Distance common.NormalizedDistance

	// ScreenSpaceError is the projected geometric error in pixels.
	ScreenSpaceError common.ScreenSpaceError
}

// LODPolicy selects a level-of-detail index. LOD 0 is the finest level;
// policies receive the previously selected index so hysteresis can hold
// the current level near a threshold.
type LODPolicy interface {
	// SelectLOD returns the LOD index for this frame.
	//
	// Parameters:
	//   - ctx: the frame's distance and screen-space-error metrics
	//   - current: the index selected last frame
	//   - lodCount: the number of available levels
	//
	// Returns:
	//   - int: the selected index in [0, lodCount)
	SelectLOD(ctx LODContext, current, lodCount int) int
}

// FixedLODPolicy always selects the same level (clamped to the range).
type FixedLODPolicy struct {
	// Index is the level to select.
	Index int
}

// Ensure FixedLODPolicy implements LODPolicy.
var _ LODPolicy = (*FixedLODPolicy)(nil)

// SelectLOD returns the fixed index clamped to [0, lodCount).
func (p *FixedLODPolicy) SelectLOD(ctx LODContext, current, lodCount int) int {
	return clampLOD(p.Index, lodCount)
}

// DistanceLODPolicy switches levels on normalized-distance thresholds
// with a symmetric hysteresis band. Thresholds[i] is the distance above
// which the level is coarser than i; crossing a threshold only takes
// effect once the distance clears it by Hysteresis in that direction.
type DistanceLODPolicy struct {
	// Thresholds are ascending normalized distances, one per LOD boundary
	// (len = lodCount - 1).
	Thresholds []float32

	// Hysteresis is the symmetric dead band applied on both sides of each
	// threshold.
	Hysteresis float32
}

// Ensure DistanceLODPolicy implements LODPolicy.
var _ LODPolicy = (*DistanceLODPolicy)(nil)

// SelectLOD applies the threshold walk with the symmetric dead band.
func (p *DistanceLODPolicy) SelectLOD(ctx LODContext, current, lodCount int) int {
	d := float32(ctx.Distance)
	selected := clampLOD(current, lodCount)
	for selected < lodCount-1 && selected < len(p.Thresholds) && d > p.Thresholds[selected]+p.Hysteresis {
		selected++
	}
	for selected > 0 && selected-1 < len(p.Thresholds) && d < p.Thresholds[selected-1]-p.Hysteresis {
		selected--
	}
	return selected
}

// ScreenSpaceErrorLODPolicy switches levels on projected-error thresholds
// with directional hysteresis: separate arrays gate entering a finer
// level and exiting to a coarser one, so the enter and exit edges of each
// boundary need not coincide.
type ScreenSpaceErrorLODPolicy struct {
	// EnterFiner[i] is the error above which the selection moves from
	// level i+1 to the finer level i.
	EnterFiner []float32

	// ExitCoarser[i] is the error below which the selection moves from
	// level i to the coarser level i+1. ExitCoarser[i] must be less than
	// EnterFiner[i] or the boundary thrashes.
	ExitCoarser []float32
}

// Ensure ScreenSpaceErrorLODPolicy implements LODPolicy.
var _ LODPolicy = (*ScreenSpaceErrorLODPolicy)(nil)

// SelectLOD applies the directional threshold walk.
func (p *ScreenSpaceErrorLODPolicy) SelectLOD(ctx LODContext, current, lodCount int) int {
	sse := float32(ctx.ScreenSpaceError)
	selected := clampLOD(current, lodCount)
	for selected > 0 && selected-1 < len(p.EnterFiner) && sse > p.EnterFiner[selected-1] {
		selected--
	}
	for selected < lodCount-1 && selected < len(p.ExitCoarser) && sse < p.ExitCoarser[selected] {
		selected++
	}
	return selected
}

func clampLOD(i, lodCount int) int {
	if i < 0 {
		return 0
	}
	if i >= lodCount {
		return lodCount - 1
	}
	return i
}
