package texture

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
)

// Format is the pixel format the renderer uploads an image with.
type Format int

const (
	// FormatRGBA8UnormSrgb is colour data; the GPU linearises it on sampling.
	FormatRGBA8UnormSrgb Format = iota
	// FormatRGBA8Unorm is linear data such as normal maps.
	FormatRGBA8Unorm
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ViewDimension is how the renderer binds the image.
type ViewDimension int

const (
	// View2D samples a single 2D layer.
	View2D ViewDimension = iota
	// View2DArray samples a stack of equally sized layers.
	View2DArray
	// ViewCube samples six layers as cube faces (+X, -X, +Y, -Y, +Z, -Z).
	ViewCube
	// ViewCubeArray samples a multiple of six layers as cubes.
	ViewCubeArray
)

func (d ViewDimension) String() string {
	switch d {
	case View2D:
		return "2d"
	case View2DArray:
		return "2d-array"
	case ViewCube:
		return "cube"
	case ViewCubeArray:
		return "cube-array"
	default:
		return fmt.Sprintf("view(%d)", int(d))
	}
}

// Descriptor describes the layout of an Image.
type Descriptor struct {
	Width  int // layer width in pixels
	Height int // layer height in pixels
	Layers int
	Format Format
	View   ViewDimension
}

// Image is decoded RGBA pixel data plus its GPU layout.
// Layers are stored top to bottom in Pixels, each Width x Height.
type Image struct {
	Pixels     *image.RGBA
	Descriptor Descriptor
}

// NewImage wraps decoded pixels as a single-layer sRGB 2D image.
func NewImage(img image.Image) *Image {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	return &Image{
		Pixels: rgba,
		Descriptor: Descriptor{
			Width:  b.Dx(),
			Height: b.Dy(),
			Layers: 1,
			Format: FormatRGBA8UnormSrgb,
			View:   View2D,
		},
	}
}

// Width returns the layer width.
func (img *Image) Width() int { return img.Descriptor.Width }

// Height returns the layer height.
func (img *Image) Height() int { return img.Descriptor.Height }

// LayerCount returns the number of array layers.
func (img *Image) LayerCount() int { return img.Descriptor.Layers }

// ReinterpretStackedAsArray splits a single vertically stacked image into layers equally
// sized layers. The pixel data is untouched; only the descriptor changes.
func (img *Image) ReinterpretStackedAsArray(layers int) error {
	d := &img.Descriptor
	if d.Layers != 1 {
		return fmt.Errorf("image already has %d layers", d.Layers)
	}
	if layers < 1 || d.Height%layers != 0 {
		return fmt.Errorf("height %d is not divisible into %d layers", d.Height, layers)
	}
	d.Height /= layers
	d.Layers = layers
	d.View = View2DArray
	return nil
}

// Layer returns a copy of layer i.
func (img *Image) Layer(i int) (*image.RGBA, error) {
	d := img.Descriptor
	if i < 0 || i >= d.Layers {
		return nil, fmt.Errorf("layer %d out of range [0, %d)", i, d.Layers)
	}
	origin := img.Pixels.Bounds().Min
	r := image.Rect(0, i*d.Height, d.Width, (i+1)*d.Height).Add(origin)
	return transform.Crop(img.Pixels, r), nil
}
