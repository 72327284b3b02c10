// Package pipeline keys GPU pipeline state objects by the hash of their
// full description so state switches reduce to a uint64 compare and
// logically equal configurations share one backend object.
package pipeline

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxygen-core/engine/renderer/shader"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender PipelineType = iota

	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute
)

// CullMode selects which triangle winding is discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// Topology selects the primitive assembly mode.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// FrontFace selects the winding considered front-facing.
type FrontFace int

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// Description is the complete, hashable configuration of a pipeline:
// canonical shader requests plus every piece of fixed-function state the
// backend bakes into the state object.
type Description struct {
	Type PipelineType

	VertexShader   shader.Request
	FragmentShader shader.Request
	ComputeShader  shader.Request

	DepthTestEnabled    bool
	DepthWriteEnabled   bool
	DepthBias           int32
	DepthBiasSlopeScale float32
	BlendEnabled        bool
	CullMode            CullMode
	Topology            Topology
	FrontFace           FrontFace
	ColorWriteMask      uint32

	// RootLayout identifies the root-binding layout the pipeline was
	// compiled against.
	RootLayout uint32
}

// NewDescription builds a render pipeline description with the default
// fixed-function state (depth test and write on, back-face culling,
// triangle list, CCW front faces, full color write).
//
// Parameters:
//   - vertex: the canonical vertex shader request
//   - fragment: the canonical fragment shader request
//   - options: functional options overriding the defaults
//
// Returns:
//   - Description: the assembled description
func NewDescription(vertex, fragment shader.Request, options ...DescriptionBuilderOption) Description {
	d := Description{
		Type:              PipelineTypeRender,
		VertexShader:      vertex,
		FragmentShader:    fragment,
		DepthTestEnabled:  true,
		DepthWriteEnabled: true,
		CullMode:          CullModeBack,
		ColorWriteMask:    0xF,
	}
	for _, opt := range options {
		opt(&d)
	}
	return d
}

// NewComputeDescription builds a compute pipeline description.
//
// Parameters:
//   - compute: the canonical compute shader request
//
// Returns:
//   - Description: the assembled description
func NewComputeDescription(compute shader.Request) Description {
	return Description{
		Type:          PipelineTypeCompute,
		ComputeShader: compute,
	}
}

// Hash returns the FNV-64a hash of the full description. Equal
// descriptions hash equal.
func (d Description) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	w32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		_, _ = h.Write(buf[:4])
	}
	w64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	wb := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}

	w32(uint32(d.Type))
	w64(d.VertexShader.Hash())
	w64(d.FragmentShader.Hash())
	w64(d.ComputeShader.Hash())
	wb(d.DepthTestEnabled)
	wb(d.DepthWriteEnabled)
	w32(uint32(d.DepthBias))
	wb(d.BlendEnabled)
	w32(math32.Float32bits(d.DepthBiasSlopeScale))
	w32(uint32(d.CullMode))
	w32(uint32(d.Topology))
	w32(uint32(d.FrontFace))
	w32(d.ColorWriteMask)
	w32(d.RootLayout)
	return h.Sum64()
}

// Pipeline is one cached pipeline state object.
type Pipeline interface {
	// Key returns the description hash the pipeline is cached under.
	Key() uint64

	// Type returns the pipeline type (render or compute).
	Type() PipelineType

	// Description returns the configuration the pipeline was built from.
	Description() Description
}

// pipeline implements Pipeline.
type pipeline struct {
	key  uint64
	desc Description
}

// Ensure pipeline implements Pipeline.
var _ Pipeline = (*pipeline)(nil)

func (p *pipeline) Key() uint64 {
	return p.key
}

func (p *pipeline) Type() PipelineType {
	return p.desc.Type
}

func (p *pipeline) Description() Description {
	return p.desc
}

// CompileFunc builds the backend state object for a description. Called
// once per distinct description; the result is cached by hash.
type CompileFunc func(desc Description) error

// Cache deduplicates pipelines by description hash. Safe for concurrent
// lookups.
type Cache struct {
	mu        sync.Mutex
	pipelines map[uint64]Pipeline
}

// NewCache creates an empty pipeline cache.
func NewCache() *Cache {
	return &Cache{
		pipelines: make(map[uint64]Pipeline),
	}
}

// GetOrCreate returns the cached pipeline for a description, compiling
// it on first use.
//
// Parameters:
//   - desc: the pipeline description
//   - compile: builds the backend object on a cache miss (may be nil)
//
// Returns:
//   - Pipeline: the cached or newly compiled pipeline
//   - error: the compile error on a failed miss
func (c *Cache) GetOrCreate(desc Description, compile CompileFunc) (Pipeline, error) {
	key := desc.Hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	if compile != nil {
		if err := compile(desc); err != nil {
			return nil, fmt.Errorf("pipeline: compile failed: %w", err)
		}
	}
	p := &pipeline{key: key, desc: desc}
	c.pipelines[key] = p
	return p, nil
}

// Len returns the number of cached pipelines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}
