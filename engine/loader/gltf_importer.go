package loader

import (
	"fmt"
	"io"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It combines the parser and the extractors to produce a complete importedAsset.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts all data into an importedAsset.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *importedAsset: the fully populated imported asset
	//   - error: error if import fails
	Import(path string) (*importedAsset, error)

	// ImportReader loads a glTF document from a reader and extracts all data.
	// The reader should provide a complete glTF JSON or GLB binary stream.
	//
	// Parameters:
	//   - name: the name to assign the asset
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//
	// Returns:
	//   - *importedAsset: the fully populated imported asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (*importedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (*importedAsset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, name)
}

// importFromParser performs a full import from a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackName: optional name used as a fallback when the document has no scene name
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*importedAsset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	if len(doc.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("unsupported required extensions: %v", doc.ExtensionsRequired)
	}

	meshExtractor := newGLTFMeshExtractor(parser)
	materialExtractor := newGLTFMaterialExtractor(parser)

	meshes, err := meshExtractor.ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}
	if len(meshes) == 0 {
		return nil, fmt.Errorf("document contains no meshes")
	}

	materials, err := materialExtractor.ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	// Clamp out-of-range material references to the default slot.
	for i := range meshes {
		if meshes[i].MaterialIndex < 0 || meshes[i].MaterialIndex >= len(materials) {
			meshes[i].MaterialIndex = 0
		}
	}

	return &importedAsset{
		Name:      gltfExtractAssetName(doc, fallbackName),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// gltfExtractAssetName derives an asset name from the document scene or a fallback.
func gltfExtractAssetName(doc *gltfDocument, fallbackName string) string {
	// Try scene name first
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	if fallbackName != "" {
		return fallbackName
	}

	return "unnamed_asset"
}
