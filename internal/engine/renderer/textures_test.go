package renderer

import (
	"image"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/engine/texture"
)

type stubSource struct {
	ready map[assets.Handle]bool
}

func (s stubSource) TextureReady(h assets.Handle) bool { return s.ready[h] }

func (s stubSource) Image(assets.Handle) (*texture.Image, bool) { return nil, false }

func newHandles(t *testing.T, paths ...string) []assets.Handle {
	t.Helper()
	srv := assets.NewServer(t.TempDir())
	t.Cleanup(srv.Close)
	var out []assets.Handle
	for _, p := range paths {
		out = append(out, srv.Add(p, texture.NewImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))))
	}
	return out
}

func TestTextureCacheGet(t *testing.T) {
	hs := newHandles(t, "day", "sky", "pending")
	day, sky, pending := hs[0], hs[1], hs[2]

	c := &textureCache{
		textures: map[assets.Handle]gpuTexture{
			day: {id: 7, view: texture.View2D},
			sky: {id: 9, view: texture.ViewCube},
		},
		white: 1,
	}
	src := stubSource{ready: map[assets.Handle]bool{}}

	got, ok := c.get(day, src)
	require.True(t, ok)
	assert.Equal(t, uint32(7), got.id)
	assert.Equal(t, uint32(7), c.getOrWhite(day, src))

	got, ok = c.get(sky, src)
	require.True(t, ok)
	assert.Equal(t, texture.ViewCube, got.view)
	assert.Equal(t, uint32(1), c.getOrWhite(sky, src), "cube textures never bind as 2D")

	_, ok = c.get(pending, src)
	assert.False(t, ok)
	assert.Equal(t, uint32(1), c.getOrWhite(pending, src))

	_, ok = c.get(assets.Handle{}, src)
	assert.False(t, ok)
}

func TestTextureCacheReadyWithoutImage(t *testing.T) {
	h := newHandles(t, "normal")[0]
	c := &textureCache{textures: map[assets.Handle]gpuTexture{}, white: 1}

	_, ok := c.get(h, stubSource{ready: map[assets.Handle]bool{h: true}})
	assert.False(t, ok)
	assert.Empty(t, c.textures)
}

func TestInternalFormat(t *testing.T) {
	assert.Equal(t, int32(gl.RGBA8), internalFormat(texture.FormatRGBA8Unorm))
	assert.Equal(t, int32(gl.SRGB8_ALPHA8), internalFormat(texture.FormatRGBA8UnormSrgb))
}
