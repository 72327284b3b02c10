package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxygen-core/engine/model"
)

// defaultAlphaCutoff is the glTF spec default for MASK alpha mode.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
const defaultAlphaCutoff = 0.5

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor defines the interface for extracting material data
// from a parsed glTF document into engine-ready model.Material structs.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - *model.Material: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(materialIndex int) (*model.Material, error)

	// ExtractAllMaterials extracts all materials from the document.
	// Documents with no materials produce a single default material so every
	// primitive has something to reference.
	//
	// Returns:
	//   - []*model.Material: all extracted materials
	//   - error: error if extraction fails
	ExtractAllMaterials() ([]*model.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(materialIndex int) (*model.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material index %d out of range", materialIndex)
	}

	mat := &doc.Materials[materialIndex]

	result := &model.Material{
		Name:      mat.Name,
		Index:     uint32(materialIndex),
		BaseColor: [4]float32{1, 1, 1, 1},
	}
	if result.Name == "" {
		result.Name = fmt.Sprintf("material_%d", materialIndex)
	}

	if mat.PbrMetallicRoughness != nil && mat.PbrMetallicRoughness.BaseColorFactor != nil {
		result.BaseColor = *mat.PbrMetallicRoughness.BaseColorFactor
	}

	// Alpha mode decides which render pass the material's geometry belongs to.
	switch mat.AlphaMode {
	case gltfAlphaModeMask:
		result.Domain = model.MaterialDomainMasked
		result.AlphaCutoff = defaultAlphaCutoff
		if mat.AlphaCutoff != nil {
			result.AlphaCutoff = *mat.AlphaCutoff
		}
	case gltfAlphaModeBlend:
		result.Domain = model.MaterialDomainTransparent
	default:
		// OPAQUE, or unset (the glTF default)
		result.Domain = model.MaterialDomainOpaque
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]*model.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	if len(doc.Materials) == 0 {
		return []*model.Material{gltfDefaultMaterial()}, nil
	}

	materials := make([]*model.Material, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(i)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
	}

	return materials, nil
}

// gltfDefaultMaterial returns the material used when the document defines none.
func gltfDefaultMaterial() *model.Material {
	return &model.Material{
		Name:      "default",
		Domain:    model.MaterialDomainOpaque,
		Index:     0,
		BaseColor: [4]float32{1, 1, 1, 1},
	}
}
