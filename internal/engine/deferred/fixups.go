package deferred

import (
	"github.com/anthonynsimon/bild/clone"

	"github.com/Faultbox/globe/internal/engine/texture"
)

// CubemapFixup turns a vertically stacked skybox image into an array of square layers
// and binds it as a cube. Images that already have layers, or that are not a stack of
// at least two squares, are left alone.
func CubemapFixup(img *texture.Image) bool {
	if img.LayerCount() != 1 {
		return false
	}
	w, h := img.Width(), img.Height()
	if w == 0 || h%w != 0 || h/w < 2 {
		return false
	}
	layers := h / w
	if err := img.ReinterpretStackedAsArray(layers); err != nil {
		return false
	}
	switch {
	case layers == 6:
		img.Descriptor.View = texture.ViewCube
	case layers%6 == 0:
		img.Descriptor.View = texture.ViewCubeArray
	}
	return true
}

// NormalMapFixup forces linear RGBA8 storage so the GPU does not sRGB-decode normals.
func NormalMapFixup(img *texture.Image) bool {
	img.Pixels = clone.AsRGBA(img.Pixels)
	img.Descriptor.Format = texture.FormatRGBA8Unorm
	return true
}
