package loader

import (
	"github.com/Carmen-Shannon/oxygen-core/engine/graphics"
	"github.com/Carmen-Shannon/oxygen-core/engine/upload"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithGraphics is an option builder that sets the graphics backend used to
// create GPU buffers for loaded assets. Without it the loader produces
// CPU-only assets.
//
// Parameters:
//   - gfx: the graphics backend instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the graphics option to a loader
func WithGraphics(gfx graphics.Graphics) LoaderBuilderOption {
	return func(l *loader) {
		l.gfx = gfx
	}
}

// WithUploads is an option builder that sets the upload coordinator used to
// stage GPU buffer uploads for loaded assets. Both WithGraphics and
// WithUploads must be set for assets to receive GPU-resident buffers.
//
// Parameters:
//   - coord: the upload coordinator instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the uploads option to a loader
func WithUploads(coord upload.Coordinator) LoaderBuilderOption {
	return func(l *loader) {
		l.uploads = coord
	}
}

// WithAsset is an option builder that pre-populates the asset cache.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *Asset) LoaderBuilderOption {
	return func(l *loader) {
		l.assetCache[key] = asset
	}
}
