package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/config"
	"github.com/Faultbox/globe/internal/engine/camera"
	"github.com/Faultbox/globe/internal/engine/deferred"
	"github.com/Faultbox/globe/internal/engine/material"
	"github.com/Faultbox/globe/internal/engine/mesh"
	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/pkg/geo"
	"github.com/Faultbox/globe/pkg/math"
)

func writePNG(t *testing.T, root, rel string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 128, G: 128, B: 255, A: 255})
		}
	}
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// testAssets writes every texture of v as a small PNG under a fresh root.
func testAssets(t *testing.T, v Variant) *assets.Server {
	t.Helper()
	root := t.TempDir()
	for role, rel := range v.Textures {
		w, h := 8, 4
		if role == RoleSkybox {
			w, h = 4, 24
		}
		writePNG(t, root, rel, w, h)
	}
	srv := assets.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func wait(t *testing.T, srv *assets.Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Wait(ctx))
}

// small keeps the tests fast; tessellation does not change scene wiring.
func small(v Variant) Variant {
	if v.Globe.Mesh.Kind == MeshUV {
		v.Globe.Mesh.Sectors, v.Globe.Mesh.Stacks = 16, 8
	}
	if v.Clouds.Mesh.Kind == MeshUV {
		v.Clouds.Mesh.Sectors, v.Clouds.Mesh.Stacks = 16, 8
	}
	v.Marker.Subdivisions = 1
	return v
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"classic", "pbr"}, Names())

	v, err := Lookup("classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", v.Name)

	_, err = Lookup("retro")
	assert.ErrorContains(t, err, "unknown variant")
}

func TestLookupReturnsCopies(t *testing.T) {
	a, _ := Lookup("pbr")
	a.Textures[RoleDay] = "elsewhere.png"
	b, _ := Lookup("pbr")
	assert.Equal(t, "textures/earth_day.jpg", b.Textures[RoleDay])
}

func TestPresets(t *testing.T) {
	p := PBR()
	assert.Equal(t, float32(1.0), p.Globe.Radius)
	assert.Equal(t, SphereMesh{Kind: MeshUV, Sectors: 512, Stacks: 512, Tangents: true}, p.Globe.Mesh)
	assert.Equal(t, float32(1.01), p.Clouds.Radius)
	assert.Equal(t, material.AlphaToCoverage, p.Clouds.AlphaMode)
	assert.True(t, p.Clouds.Spin.IsZero())
	assert.True(t, p.Toggles.Skybox)
	assert.False(t, p.Toggles.DebugMarkers)

	c := Classic()
	assert.Equal(t, float32(2.0), c.Globe.Radius)
	assert.Equal(t, 64, c.Globe.Mesh.Sectors)
	assert.Equal(t, 32, c.Globe.Mesh.Stacks)
	assert.Equal(t, material.AlphaBlend, c.Globe.AlphaMode)
	assert.Equal(t, float32(2.02), c.Clouds.Radius)
	assert.Equal(t, float32(0.005), c.Clouds.Spin.SpeedX)
	assert.True(t, c.Toggles.DebugMarkers)
	assert.False(t, c.Toggles.Skybox)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Globe.Variant = "classic"
	off := false
	speed := float32(0.02)
	cfg.Globe.DrawClouds = &off
	cfg.Globe.DayTexture = &off
	cfg.Globe.CloudSpeed = &speed
	cfg.Globe.MarkerUpAxis = "y"
	cfg.Camera.Controller = "direct"
	cfg.Assets.Textures = map[string]string{"day": "custom/day.png"}

	v, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.False(t, v.Toggles.DrawClouds)
	assert.False(t, v.Toggles.DayTexture)
	assert.True(t, v.Toggles.DebugMarkers)
	assert.Equal(t, float32(0.02), v.Clouds.Spin.SpeedX)
	assert.Equal(t, geo.AxisY, v.MarkerUpAxis)
	assert.Equal(t, camera.ControllerDirect, v.Controller)
	assert.Equal(t, "custom/day.png", v.Textures[RoleDay])
}

func TestFromConfigRejectsUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Globe.Variant = "retro"
	_, err := FromConfig(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Assets.Textures = map[string]string{"moon": "moon.png"}
	_, err = FromConfig(cfg)
	assert.ErrorContains(t, err, "texture role")
}

func TestSetupPBR(t *testing.T) {
	v := small(PBR())
	srv := testAssets(t, v)

	s, err := Setup(v, srv)
	require.NoError(t, err)
	assert.Len(t, s.Entities, 6)

	globe := s.Globe()
	day, _ := s.Texture(RoleDay)
	night, _ := s.Texture(RoleNight)
	normal, _ := s.Texture(RoleNormal)
	clouds, _ := s.Texture(RoleClouds)
	specular, _ := s.Texture(RoleSpecular)
	assert.Equal(t, day, globe.Material.BaseColorTexture)
	assert.Equal(t, night, globe.Material.EmissiveTexture)
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, globe.Material.Emissive)
	assert.Equal(t, normal, globe.Material.NormalMapTexture)
	assert.Equal(t, clouds, globe.Material.OcclusionTexture)
	assert.Equal(t, specular, globe.Material.MetallicRoughnessTexture)
	assert.Equal(t, float32(0.75), globe.Material.PerceptualRoughness)
	assert.True(t, globe.Mesh.HasTangents)
	assert.True(t, globe.Transform.Rotation.ApproxEqual(math.QuatFromRotationZ(math32.Pi), 1e-5))

	assert.True(t, s.Clouds().Visible)
	assert.Equal(t, [4]float32{1, 1, 1, 0.8}, s.Clouds().Material.BaseColor)
	assert.True(t, s.Clouds().Material.DoubleSided)

	for _, e := range s.Entities {
		if e.Kind == KindAxis || e.Kind == KindMarker {
			assert.False(t, e.Visible, e.Name)
		}
	}

	require.NotNil(t, s.Skybox)
	assert.Equal(t, float32(1000), s.Skybox.Brightness)
	assert.Equal(t, 2, s.PendingFixups())

	wait(t, srv)
	s.Update(1.0 / 60)
	assert.Zero(t, s.PendingFixups())

	sky, _ := s.Texture(RoleSkybox)
	assert.True(t, s.TextureReady(sky))
	img, ok := srv.Image(sky)
	require.True(t, ok)
	assert.Equal(t, 6, img.LayerCount())
	assert.Equal(t, texture.ViewCube, img.Descriptor.View)

	nimg, ok := srv.Image(normal)
	require.True(t, ok)
	assert.Equal(t, texture.FormatRGBA8Unorm, nimg.Descriptor.Format)
	dimg, _ := srv.Image(day)
	assert.Equal(t, texture.FormatRGBA8UnormSrgb, dimg.Descriptor.Format)

	// A second poll never reapplies.
	s.Update(1.0 / 60)
	assert.Equal(t, 6, img.LayerCount())
	assert.Equal(t, deferred.Applied, s.Skybox.Texture.Status())
}

func TestSetupClassic(t *testing.T) {
	v := small(Classic())
	srv := testAssets(t, v)

	s, err := Setup(v, srv)
	require.NoError(t, err)
	assert.Nil(t, s.Skybox)
	assert.Zero(t, s.PendingFixups())
	_, ok := s.Texture(RoleSkybox)
	assert.False(t, ok)

	globe := s.Globe()
	specular, _ := s.Texture(RoleSpecular)
	assert.Equal(t, specular, globe.Material.OcclusionTexture)
	assert.Equal(t, material.AlphaBlend, globe.Material.AlphaMode)
	assert.False(t, globe.Material.EmissiveTexture.IsValid())
	assert.InDelta(t, 2, globe.Mesh.Bounds.Max[2], 1e-5)

	var marker *Entity
	axes := 0
	for _, e := range s.Entities {
		switch e.Kind {
		case KindMarker:
			marker = e
		case KindAxis:
			axes++
			assert.True(t, e.Visible)
			assert.True(t, e.Material.Unlit)
		}
	}
	assert.Equal(t, 3, axes)
	require.NotNil(t, marker)
	assert.True(t, marker.Material.Unlit)
	assert.True(t, marker.Visible)
	want := geo.ToCartesian(60.19206, 24.945831, 2.0)
	assert.True(t, marker.Transform.Translation.ApproxEqual(want, 1e-6))

	start := s.Clouds().Transform.Rotation
	s.Update(1.0)
	expected := math.QuatFromRotationX(2 * math32.Pi * 0.005).Mul(start)
	assert.True(t, s.Clouds().Transform.Rotation.ApproxEqual(expected, 1e-5))
	assert.True(t, s.Globe().Transform.Rotation.ApproxEqual(start, 1e-6), "globe must not rotate")
}

func TestDebugAxesOrientation(t *testing.T) {
	v := small(Classic())
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)

	// Capsules lie along local Y; the three axes point along Y, Z and X.
	dirs := []math.Vec3{}
	for _, e := range s.Entities {
		if e.Kind == KindAxis {
			dirs = append(dirs, e.Transform.Rotation.Rotate(math.Vec3Y))
		}
	}
	require.Len(t, dirs, 3)
	assert.True(t, dirs[0].ApproxEqual(math.Vec3Y, 1e-5), "red %v", dirs[0])
	assert.True(t, dirs[1].ApproxEqual(math.Vec3Z, 1e-5), "green %v", dirs[1])
	assert.True(t, dirs[2].ApproxEqual(math.Vec3X.Neg(), 1e-5), "blue %v", dirs[2])
}

func TestToggles(t *testing.T) {
	v := small(PBR())
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)
	night, _ := s.Texture(RoleNight)

	s.SetDayTexture(false)
	assert.Equal(t, night, s.Globe().Material.BaseColorTexture)
	assert.False(t, s.Globe().Material.EmissiveTexture.IsValid())
	assert.Equal(t, [3]float32{}, s.Globe().Material.Emissive)

	s.SetDayTexture(true)
	assert.Equal(t, night, s.Globe().Material.EmissiveTexture)

	require.NoError(t, s.SetDrawClouds(false))
	assert.NotContains(t, s.Entities, s.Clouds())
	assert.False(t, s.Toggles().DrawClouds)

	s.SetDebugMarkers(true)
	for _, e := range s.Entities {
		if e.Kind == KindAxis || e.Kind == KindMarker {
			assert.True(t, e.Visible, e.Name)
		}
	}
}

func TestFixupGatesTextureReady(t *testing.T) {
	v := small(PBR())
	srv := testAssets(t, v)
	s, err := Setup(v, srv)
	require.NoError(t, err)

	sky, _ := s.Texture(RoleSkybox)
	normal, _ := s.Texture(RoleNormal)
	day, _ := s.Texture(RoleDay)

	wait(t, srv)
	require.Equal(t, assets.Ready, srv.State(sky))
	require.Equal(t, assets.Ready, srv.State(normal))

	// Loaded but not yet fixed up: the renderer must not upload them.
	assert.False(t, s.TextureReady(sky))
	assert.False(t, s.TextureReady(normal))
	assert.True(t, s.TextureReady(day))

	s.Update(1.0 / 60)
	assert.True(t, s.TextureReady(sky))
	assert.True(t, s.TextureReady(normal))
}

func TestLoadingTextures(t *testing.T) {
	v := small(PBR())
	srv := testAssets(t, v)
	s, err := Setup(v, srv)
	require.NoError(t, err)

	wait(t, srv)
	// The normal map waits for its fixup.
	assert.Equal(t, 1, s.LoadingTextures())

	s.Update(1.0 / 60)
	assert.Zero(t, s.LoadingTextures())
}

func TestCloudsOffAtStartup(t *testing.T) {
	v := small(Classic())
	v.Toggles.DrawClouds = false
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)

	assert.Nil(t, s.Clouds())
	assert.Zero(t, s.rotation.Len())
	for _, e := range s.Entities {
		assert.NotEqual(t, KindClouds, e.Kind)
	}

	require.NoError(t, s.SetDrawClouds(true))
	clouds := s.Clouds()
	require.NotNil(t, clouds)
	assert.Contains(t, s.Entities, clouds)
	assert.Equal(t, 1, s.rotation.Len())
	assert.True(t, s.Toggles().DrawClouds)
}

func TestCloudsDespawnStopsRotation(t *testing.T) {
	v := small(Classic())
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)
	clouds := s.Clouds()
	require.NotNil(t, clouds)
	require.Equal(t, 1, s.rotation.Len())

	require.NoError(t, s.SetDrawClouds(false))
	assert.Zero(t, s.rotation.Len())
	held := clouds.Transform.Rotation
	s.Update(1.0)
	assert.Equal(t, held, clouds.Transform.Rotation)

	// Showing again reuses the built layer and its id.
	id := clouds.ID
	require.NoError(t, s.SetDrawClouds(true))
	assert.Same(t, clouds, s.Clouds())
	assert.Equal(t, id, s.Clouds().ID)
	assert.Equal(t, 1, s.rotation.Len())

	ids := map[uint32]bool{}
	for _, e := range s.Entities {
		assert.False(t, ids[e.ID], "duplicate id %d", e.ID)
		ids[e.ID] = true
	}
}

func TestMarkerUpAxis(t *testing.T) {
	v := small(Classic())
	v.MarkerUpAxis = geo.AxisY
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)

	for _, e := range s.Entities {
		if e.Kind == KindMarker {
			lat, _, h := geo.ToGeodetic(e.Transform.Translation, geo.AxisY)
			assert.InDelta(t, 60.19206, lat, 1e-3)
			assert.InDelta(t, 2.0, h, 1e-5)
			assert.Greater(t, e.Transform.Translation.Y, float32(1.5))
		}
	}
}

func TestSetupMissingAssetsDegrades(t *testing.T) {
	srv := assets.NewServer(t.TempDir())
	defer srv.Close()

	s, err := Setup(small(PBR()), srv)
	require.NoError(t, err)

	wait(t, srv)
	for i := 0; i < 3; i++ {
		s.Update(1.0 / 60)
	}
	assert.Zero(t, s.PendingFixups())
	assert.Equal(t, deferred.Abandoned, s.Skybox.Texture.Status())

	sky, _ := s.Texture(RoleSkybox)
	day, _ := s.Texture(RoleDay)
	assert.False(t, s.TextureReady(sky))
	assert.False(t, s.TextureReady(day))
	assert.Equal(t, assets.Failed, srv.State(day))
}

func TestSetupMeshError(t *testing.T) {
	v := small(Classic())
	v.Marker.Subdivisions = 80

	srv := assets.NewServer(t.TempDir())
	defer srv.Close()

	_, err := Setup(v, srv)
	var ie *mesh.IcosphereError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.ErrorContains(t, err, "marker mesh")
}

func TestBoundingRadius(t *testing.T) {
	v := small(PBR())
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)

	r := s.BoundingRadius()
	assert.GreaterOrEqual(t, r, float32(1.01))
	assert.Less(t, r, float32(2))

	s.SetDebugMarkers(true)
	assert.GreaterOrEqual(t, s.BoundingRadius(), float32(2.5))
}

func TestLightAndCamera(t *testing.T) {
	v := small(Classic())
	s, err := Setup(v, testAssets(t, v))
	require.NoError(t, err)

	assert.Equal(t, float32(10000), s.Light.Illuminance)
	assert.True(t, s.Light.Shadows)
	assert.True(t, s.Light.Direction().ApproxEqual(math.Vec3{X: -4, Y: 4, Z: 4}.Normalize(), 1e-5))
	assert.Equal(t, math.Vec3{X: -2, Y: 5, Z: 5}, s.Camera.Eye)
	assert.Equal(t, 4, s.Camera.MSAA)
	assert.Equal(t, float32(0.1), s.Ambient.Brightness)
	assert.Equal(t, [3]float32{}, s.Ambient.Color)
}
