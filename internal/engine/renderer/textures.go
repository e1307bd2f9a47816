package renderer

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/internal/logger"
)

// TextureSource tells the renderer when a texture may be uploaded and hands over its pixels.
type TextureSource interface {
	TextureReady(h assets.Handle) bool
	Image(h assets.Handle) (*texture.Image, bool)
}

type gpuTexture struct {
	id   uint32
	view texture.ViewDimension
}

// textureCache uploads textures the first frame their asset is ready.
type textureCache struct {
	textures map[assets.Handle]gpuTexture
	white    uint32
}

func newTextureCache() *textureCache {
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(white.Pix, []byte{255, 255, 255, 255})
	return &textureCache{
		textures: make(map[assets.Handle]gpuTexture),
		white:    upload2D(white, gl.RGBA8),
	}
}

// get returns the GL texture for h, uploading it if its asset just became ready.
func (c *textureCache) get(h assets.Handle, src TextureSource) (gpuTexture, bool) {
	if !h.IsValid() {
		return gpuTexture{}, false
	}
	if t, ok := c.textures[h]; ok {
		return t, true
	}
	if !src.TextureReady(h) {
		return gpuTexture{}, false
	}
	img, ok := src.Image(h)
	if !ok {
		return gpuTexture{}, false
	}

	t := gpuTexture{view: img.Descriptor.View}
	switch t.view {
	case texture.ViewCube, texture.ViewCubeArray:
		t.id = uploadCube(img)
	default:
		// Array layers that are not cubes are stored as the original stacked 2D image
		t.view = texture.View2D
		t.id = upload2D(img.Pixels, internalFormat(img.Descriptor.Format))
	}
	c.textures[h] = t
	logger.Named("renderer").Debug("texture uploaded",
		zap.String("path", h.Path()),
		zap.Stringer("view", img.Descriptor.View),
		zap.Stringer("format", img.Descriptor.Format),
	)
	return t, true
}

// getOrWhite returns the texture for h or a 1x1 white texture while it loads.
func (c *textureCache) getOrWhite(h assets.Handle, src TextureSource) uint32 {
	if t, ok := c.get(h, src); ok && t.view == texture.View2D {
		return t.id
	}
	return c.white
}

func (c *textureCache) destroy() {
	for _, t := range c.textures {
		gl.DeleteTextures(1, &t.id)
	}
	c.textures = make(map[assets.Handle]gpuTexture)
	if c.white != 0 {
		gl.DeleteTextures(1, &c.white)
	}
}

func internalFormat(f texture.Format) int32 {
	if f == texture.FormatRGBA8Unorm {
		return gl.RGBA8
	}
	return gl.SRGB8_ALPHA8
}

func upload2D(img *image.RGBA, format int32) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, format, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return texID
}

// uploadCube uploads the first six layers as cube faces (+X, -X, +Y, -Y, +Z, -Z).
// Later cubes of a cube array are not drawn by the skybox.
func uploadCube(img *texture.Image) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, texID)
	format := internalFormat(img.Descriptor.Format)
	for i := 0; i < 6; i++ {
		face, err := img.Layer(i)
		if err != nil {
			logger.Named("renderer").Warn("cube face missing", zap.Int("face", i), zap.Error(err))
			break
		}
		gl.TexImage2D(uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i), 0, format,
			int32(face.Bounds().Dx()), int32(face.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&face.Pix[0]))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	return texID
}
