package sceneprep

import "strings"

// PassMask is a bit set naming the render passes that must execute a
// draw record or partition.
type PassMask uint32

const (
	// PassOpaque is the depth-writing opaque geometry pass.
	PassOpaque PassMask = 1 << 0
	// PassMasked is the alpha-tested opaque pass.
	PassMasked PassMask = 1 << 1
	// PassTransparent is the sorted transparency pass.
	PassTransparent PassMask = 1 << 2
	// PassShadow is the shadow-map depth pass.
	PassShadow PassMask = 1 << 3
	// PassDepth is the depth pre-pass.
	PassDepth PassMask = 1 << 4
)

// Has reports whether every bit in other is set.
func (m PassMask) Has(other PassMask) bool {
	return m&other == other
}

// String returns the set bits as a "|"-joined list.
func (m PassMask) String() string {
	if m == 0 {
		return "None"
	}
	var names []string
	for _, e := range []struct {
		bit  PassMask
		name string
	}{
		{PassOpaque, "Opaque"},
		{PassMasked, "Masked"},
		{PassTransparent, "Transparent"},
		{PassShadow, "Shadow"},
		{PassDepth, "Depth"},
	} {
		if m&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, "|")
}
