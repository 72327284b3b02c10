// Package shader defines compilation requests in a canonical form so
// that logically equal requests hash equal, which the pipeline cache
// depends on for correctness.
package shader

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Stage identifies a shader pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

// String returns the stage's name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "Vertex"
	case StageFragment:
		return "Fragment"
	case StageCompute:
		return "Compute"
	default:
		return "Unknown"
	}
}

// Define is one preprocessor definition of a request.
type Define struct {
	// Name is the macro name.
	Name string

	// Value is the macro value (may be empty).
	Value string
}

// Request describes one shader to compile. Build a canonical request
// with NewRequest before using it as a cache key.
type Request struct {
	// Stage is the target pipeline stage.
	Stage Stage

	// EntryPoint is the entry function name. Must be a C identifier.
	EntryPoint string

	// Path is the source path, normalized to forward slashes, relative,
	// with no parent traversal.
	Path string

	// Defines are the preprocessor definitions, sorted by name, each
	// name unique.
	Defines []Define
}

// NewRequest validates and canonicalizes a shader request: the path is
// slash-normalized and checked for absolute prefixes and parent
// traversal, the entry point is checked as a C identifier, and defines
// are sorted with duplicate names rejected.
//
// Parameters:
//   - stage: the target pipeline stage
//   - path: the shader source path
//   - entryPoint: the entry function name
//   - defines: preprocessor definitions in any order
//
// Returns:
//   - Request: the canonical request
//   - error: an error describing the first validation failure
func NewRequest(stage Stage, path, entryPoint string, defines ...Define) (Request, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return Request{}, err
	}
	if !isCIdentifier(entryPoint) {
		return Request{}, fmt.Errorf("shader: entry point %q is not a valid identifier", entryPoint)
	}

	canonical := append([]Define(nil), defines...)
	sort.Slice(canonical, func(i, j int) bool {
		return canonical[i].Name < canonical[j].Name
	})
	for i := 1; i < len(canonical); i++ {
		if canonical[i].Name == canonical[i-1].Name {
			return Request{}, fmt.Errorf("shader: duplicate define %q", canonical[i].Name)
		}
	}

	return Request{
		Stage:      stage,
		EntryPoint: entryPoint,
		Path:       normalized,
		Defines:    canonical,
	}, nil
}

// normalizePath converts separators to forward slashes and rejects
// absolute prefixes and parent traversal.
func normalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("shader: empty source path")
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	if strings.HasPrefix(normalized, "/") || hasDrivePrefix(normalized) {
		return "", fmt.Errorf("shader: absolute path %q not allowed", path)
	}
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return "", fmt.Errorf("shader: parent traversal in path %q not allowed", path)
		}
	}
	return normalized, nil
}

// hasDrivePrefix detects Windows drive-letter prefixes like "C:/".
func hasDrivePrefix(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isCIdentifier reports whether s is a valid C identifier.
func isCIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		digit := c >= '0' && c <= '9'
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !digit {
			return false
		}
	}
	return true
}

// Hash returns the FNV-64a hash of the canonical form. Equal requests
// hash equal; the hash feeds the pipeline cache key.
func (r Request) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(r.Stage))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(r.EntryPoint))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(r.Path))
	_, _ = h.Write([]byte{0})
	for _, d := range r.Defines {
		_, _ = h.Write([]byte(d.Name))
		_, _ = h.Write([]byte{'='})
		_, _ = h.Write([]byte(d.Value))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// String returns a human-readable form for logs.
func (r Request) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%s@%s", r.Stage, r.EntryPoint, r.Path)
	for _, d := range r.Defines {
		fmt.Fprintf(&sb, " -D%s=%s", d.Name, d.Value)
	}
	return sb.String()
}
