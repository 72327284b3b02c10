package graphics

// ResourceState is the logical GPU state of a tracked resource. The state
// tracker synthesizes the backend barriers required to move a resource
// between these states.
type ResourceState int

const (
	// ResourceStateUnknown is the state of a resource that has entered the
	// tracker but never had an initial state recorded.
	ResourceStateUnknown ResourceState = iota

	// ResourceStateCommon is the neutral state usable by any queue.
	ResourceStateCommon

	// ResourceStateCopyDest marks a resource as the destination of copy commands.
	ResourceStateCopyDest

	// ResourceStateCopySource marks a resource as the source of copy commands.
	ResourceStateCopySource

	// ResourceStateShaderResource marks a resource readable by shaders (SRV).
	ResourceStateShaderResource

	// ResourceStateUnorderedAccess marks a resource for unordered read/write (UAV).
	ResourceStateUnorderedAccess

	// ResourceStateRenderTarget marks a texture bound as a color attachment.
	ResourceStateRenderTarget

	// ResourceStateDepthWrite marks a texture bound for depth writes.
	ResourceStateDepthWrite

	// ResourceStateDepthRead marks a texture bound for depth-only reads.
	ResourceStateDepthRead

	// ResourceStatePresent marks a surface texture ready for presentation.
	ResourceStatePresent
)

// String implements fmt.Stringer for log output.
func (s ResourceState) String() string {
	switch s {
	case ResourceStateCommon:
		return "Common"
	case ResourceStateCopyDest:
		return "CopyDest"
	case ResourceStateCopySource:
		return "CopySource"
	case ResourceStateShaderResource:
		return "ShaderResource"
	case ResourceStateUnorderedAccess:
		return "UnorderedAccess"
	case ResourceStateRenderTarget:
		return "RenderTarget"
	case ResourceStateDepthWrite:
		return "DepthWrite"
	case ResourceStateDepthRead:
		return "DepthRead"
	case ResourceStatePresent:
		return "Present"
	default:
		return "Unknown"
	}
}

// Format identifies the texel layout of a texture or the element format of a
// typed buffer view. Only the formats the core actually moves through the
// upload path are enumerated; backends may support more.
type Format int

const (
	// FormatUnknown is the zero format; uploads reject it.
	FormatUnknown Format = iota

	// FormatRGBA8Unorm is 8-bit-per-channel RGBA, 4 bytes per texel.
	FormatRGBA8Unorm

	// FormatBGRA8Unorm is 8-bit-per-channel BGRA, 4 bytes per texel.
	FormatBGRA8Unorm

	// FormatRG16Float is 16-bit float RG, 4 bytes per texel.
	FormatRG16Float

	// FormatRGBA16Float is 16-bit float RGBA, 8 bytes per texel.
	FormatRGBA16Float

	// FormatRGBA32Float is 32-bit float RGBA, 16 bytes per texel.
	FormatRGBA32Float

	// FormatR32Uint is a single 32-bit unsigned integer channel.
	FormatR32Uint

	// FormatDepth32Float is a 32-bit float depth texture format.
	FormatDepth32Float
)

// BlockSize returns the byte size of one texel block for the format, or 0
// for FormatUnknown.
func (f Format) BlockSize() uint64 {
	switch f {
	case FormatRGBA8Unorm, FormatBGRA8Unorm, FormatRG16Float, FormatR32Uint, FormatDepth32Float:
		return 4
	case FormatRGBA16Float:
		return 8
	case FormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// TextureSlice addresses a single subresource of a texture: one mip level
// of one array slice (or cube face).
type TextureSlice struct {
	MipLevel   uint32
	ArraySlice uint32
}

// BarrierKind distinguishes the three barrier families the tracker emits.
type BarrierKind int

const (
	// BarrierKindTransition moves a resource between two logical states.
	BarrierKindTransition BarrierKind = iota

	// BarrierKindMemory flushes UAV writes before subsequent access.
	BarrierKindMemory

	// BarrierKindAliasing synchronizes placed resources sharing memory.
	BarrierKindAliasing
)

// Barrier is one synchronization command synthesized by the state tracker,
// consumed by CommandRecorder implementations.
type Barrier struct {
	Kind     BarrierKind
	Resource NativeResource
	Before   ResourceState
	After    ResourceState
}
