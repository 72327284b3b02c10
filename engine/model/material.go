// Package model holds the geometry-side asset types: materials, meshes
// carved into submeshes, and multi-LOD geometry with pluggable
// level-of-detail selection policies.
package model

// MaterialDomain classifies how a material's surface participates in the
// frame's pass partitioning.
type MaterialDomain int

const (
	// MaterialDomainOpaque renders in the opaque pass with depth writes.
	MaterialDomainOpaque MaterialDomain = iota
	// MaterialDomainMasked renders opaque with alpha-test discard.
	MaterialDomainMasked
	// MaterialDomainTransparent renders sorted in the transparency pass.
	MaterialDomainTransparent
)

// String returns the domain's name.
func (d MaterialDomain) String() string {
	switch d {
	case MaterialDomainOpaque:
		return "Opaque"
	case MaterialDomainMasked:
		return "Masked"
	case MaterialDomainTransparent:
		return "Transparent"
	default:
		return "Unknown"
	}
}

// Material describes a surface. The Index is the record's slot in the
// GPU-side material buffer and is what draw records reference.
type Material struct {
	// Name is the material's identifier (for debugging and logging).
	Name string

	// Domain classifies the surface for pass partitioning.
	Domain MaterialDomain

	// Index is the slot in the GPU material buffer.
	Index uint32

	// BaseColor is the RGBA base color factor.
	BaseColor [4]float32

	// AlphaCutoff is the alpha-test threshold for masked materials.
	AlphaCutoff float32
}
