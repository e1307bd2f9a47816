package deferred

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/engine/texture"
)

type fakeSource struct {
	state assets.State
	img   *texture.Image
	reads int
}

func (f *fakeSource) State(assets.Handle) assets.State { return f.state }

func (f *fakeSource) Image(assets.Handle) (*texture.Image, bool) {
	f.reads++
	return f.img, f.img != nil
}

func stacked(w, h int) *texture.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y / w * 40), A: 255})
		}
	}
	return texture.NewImage(img)
}

func TestPollAppliesOnceAfterReady(t *testing.T) {
	src := &fakeSource{state: assets.Loading, img: stacked(4, 24)}
	calls := 0
	tex := New("skybox", assets.Handle{}, func(img *texture.Image) bool {
		calls++
		return CubemapFixup(img)
	})

	for i := 0; i < 3; i++ {
		assert.False(t, tex.Poll(src))
	}
	assert.Equal(t, Pending, tex.Status())
	assert.Zero(t, calls)

	src.state = assets.Ready
	assert.True(t, tex.Poll(src))
	for i := 0; i < 5; i++ {
		assert.False(t, tex.Poll(src))
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, src.reads)
	assert.True(t, tex.Ready())
	assert.True(t, tex.Changed())
}

func TestPollNotRequestedWaits(t *testing.T) {
	src := &fakeSource{state: assets.NotRequested}
	tex := New("x", assets.Handle{}, NormalMapFixup)
	assert.False(t, tex.Poll(src))
	assert.Equal(t, Pending, tex.Status())
}

func TestPollFailedIsTerminal(t *testing.T) {
	src := &fakeSource{state: assets.Failed}
	calls := 0
	tex := New("missing", assets.Handle{}, func(*texture.Image) bool {
		calls++
		return true
	})

	assert.False(t, tex.Poll(src))
	assert.Equal(t, Abandoned, tex.Status())

	src.state = assets.Ready
	src.img = stacked(2, 12)
	assert.False(t, tex.Poll(src))
	assert.Zero(t, calls)
	assert.False(t, tex.Ready())
}

func TestCubemapFixupSixLayers(t *testing.T) {
	img := stacked(8, 48)
	require.True(t, CubemapFixup(img))
	assert.Equal(t, 6, img.LayerCount())
	assert.Equal(t, 8, img.Width())
	assert.Equal(t, 8, img.Height())
	assert.Equal(t, texture.ViewCube, img.Descriptor.View)

	face, err := img.Layer(5)
	require.NoError(t, err)
	r, _, _, _ := face.At(face.Bounds().Min.X, face.Bounds().Min.Y).RGBA()
	assert.Equal(t, uint32(200)*0x101, r)
}

func TestCubemapFixupCubeArray(t *testing.T) {
	img := stacked(2, 24)
	require.True(t, CubemapFixup(img))
	assert.Equal(t, 12, img.LayerCount())
	assert.Equal(t, texture.ViewCubeArray, img.Descriptor.View)
}

func TestCubemapFixupSkipsSquare(t *testing.T) {
	img := stacked(16, 16)
	assert.False(t, CubemapFixup(img))
	assert.Equal(t, 1, img.LayerCount())
	assert.Equal(t, texture.View2D, img.Descriptor.View)
}

func TestCubemapFixupSkipsLayered(t *testing.T) {
	img := stacked(4, 24)
	require.NoError(t, img.ReinterpretStackedAsArray(6))
	before := img.Descriptor

	assert.False(t, CubemapFixup(img))
	assert.Equal(t, before, img.Descriptor)
}

func TestCubemapFixupSkipsNonMultiple(t *testing.T) {
	img := stacked(4, 10)
	assert.False(t, CubemapFixup(img))
	assert.Equal(t, 1, img.LayerCount())
}

func TestNormalMapFixup(t *testing.T) {
	img := stacked(4, 4)
	require.Equal(t, texture.FormatRGBA8UnormSrgb, img.Descriptor.Format)
	assert.True(t, NormalMapFixup(img))
	assert.Equal(t, texture.FormatRGBA8Unorm, img.Descriptor.Format)
	assert.Equal(t, 4*4*4, len(img.Pixels.Pix))
}

func TestSetWithServer(t *testing.T) {
	srv := assets.NewServer(t.TempDir())
	defer srv.Close()

	var set Set
	sky := set.Add(New("skybox", srv.Add("sky.png", stacked(4, 24)), CubemapFixup))
	normal := set.Add(New("normal", srv.Add("normal.png", stacked(4, 4)), NormalMapFixup))
	require.Equal(t, 2, set.Pending())

	ready := set.Poll(srv)
	assert.ElementsMatch(t, []*Texture{sky, normal}, ready)
	assert.Zero(t, set.Pending())
	assert.Empty(t, set.Poll(srv))

	img, ok := srv.Image(sky.Handle)
	require.True(t, ok)
	assert.Equal(t, texture.ViewCube, img.Descriptor.View)
}
