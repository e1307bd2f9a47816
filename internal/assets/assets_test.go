package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globe/internal/engine/texture"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func wait(t *testing.T, s *Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestLoadReady(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "textures", "earth_day.png"), 8, 4)

	s := NewServer(root)
	defer s.Close()

	h := s.Load("textures/earth_day.png")
	require.True(t, h.IsValid())
	assert.Equal(t, "textures/earth_day.png", h.Path())

	wait(t, s)
	assert.Equal(t, Ready, s.State(h))

	img, ok := s.Image(h)
	require.True(t, ok)
	assert.Equal(t, 8, img.Width())
	assert.Equal(t, 4, img.Height())
	assert.Equal(t, 1, img.LayerCount())
	assert.Equal(t, uint8(200), img.Pixels.RGBAAt(0, 0).R)
	assert.NoError(t, s.Err(h))
}

func TestLoadDeduplicates(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), 2, 2)

	s := NewServer(root)
	defer s.Close()

	h1 := s.Load("a.png")
	h2 := s.Load("a.png")
	assert.Equal(t, h1, h2)

	hits, misses := s.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestLoadMissingFails(t *testing.T) {
	s := NewServer(t.TempDir())
	defer s.Close()

	h := s.Load("nope.png")
	wait(t, s)

	assert.Equal(t, Failed, s.State(h))
	assert.Error(t, s.Err(h))
	_, ok := s.Image(h)
	assert.False(t, ok)
}

func TestLoadCorruptFails(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.jpg"), []byte("not a jpeg"), 0644))

	s := NewServer(root)
	defer s.Close()

	h := s.Load("bad.jpg")
	wait(t, s)
	assert.Equal(t, Failed, s.State(h))
}

func TestAbsolutePathIgnoresRoot(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "skybox.png")
	writePNG(t, abs, 1, 6)

	s := NewServer("/definitely/not/here")
	defer s.Close()

	assert.Equal(t, abs, s.Resolve(abs))
	h := s.Load(abs)
	wait(t, s)
	assert.Equal(t, Ready, s.State(h))
}

func TestUnknownHandle(t *testing.T) {
	s := NewServer("")
	defer s.Close()

	assert.Equal(t, NotRequested, s.State(Handle{}))
	assert.Equal(t, NotRequested, s.State(Handle{id: 7, path: "x.png"}))
}

func TestAdd(t *testing.T) {
	s := NewServer("")
	defer s.Close()

	img := texture.NewImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	h := s.Add("generated/white", img)
	assert.Equal(t, Ready, s.State(h))

	got, ok := s.Image(h)
	require.True(t, ok)
	assert.Same(t, img, got)
}

func TestDecodeTGAByExtension(t *testing.T) {
	data := make([]byte, 18, 18+3)
	data[2] = texture.TGATypeUncompressed
	data[12], data[14], data[16] = 1, 1, 24
	data = append(data, 255, 0, 0)

	img, err := Decode(data, "textures/FOO.TGA")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.Pixels.RGBAAt(0, 0).B)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
}
