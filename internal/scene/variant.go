package scene

import (
	"fmt"
	"sort"

	"github.com/Faultbox/globe/internal/config"
	"github.com/Faultbox/globe/internal/engine/camera"
	"github.com/Faultbox/globe/internal/engine/lighting"
	"github.com/Faultbox/globe/internal/engine/material"
	"github.com/Faultbox/globe/internal/engine/rotation"
	"github.com/Faultbox/globe/pkg/geo"
)

// Role names what a texture is used for.
type Role string

const (
	RoleDay      Role = "day"
	RoleNight    Role = "night"
	RoleNormal   Role = "normal"
	RoleSpecular Role = "specular"
	RoleClouds   Role = "clouds"
	RoleSkybox   Role = "skybox"
)

// Roles lists every texture role in load order.
var Roles = []Role{RoleDay, RoleNight, RoleNormal, RoleSpecular, RoleClouds, RoleSkybox}

// MeshKind selects the sphere tessellation.
type MeshKind int

const (
	MeshUV MeshKind = iota
	MeshIco
)

// SphereMesh describes how a sphere is tessellated.
type SphereMesh struct {
	Kind         MeshKind
	Sectors      int
	Stacks       int
	Subdivisions int
	Tangents     bool
}

// GlobeSpec describes the earth sphere and its material.
type GlobeSpec struct {
	Radius              float32
	Mesh                SphereMesh
	Emissive            float32 // night-lights strength, 0 disables
	PerceptualRoughness float32
	Reflectance         float32
	AlphaMode           material.AlphaMode
	Occlusion           Role // texture used as ambient occlusion, "" for none
	MetallicRoughness   Role
	NormalMapFixup      bool
}

// CloudSpec describes the cloud layer.
type CloudSpec struct {
	Radius      float32
	Mesh        SphereMesh
	Color       [4]float32
	AlphaMode   material.AlphaMode
	DoubleSided bool
	Spin        rotation.Rotatable
}

// MarkerSpec places a small sphere at a geodetic position.
type MarkerSpec struct {
	Lat, Lon     float32
	Height       float32
	Radius       float32
	Subdivisions int
	Color        [3]float32
}

// Toggles are the runtime switches of a variant.
type Toggles struct {
	DrawClouds   bool
	DebugMarkers bool
	DayTexture   bool
	Skybox       bool
}

// Variant is a declarative description of one globe scene.
type Variant struct {
	Name     string
	Textures map[Role]string

	Globe  GlobeSpec
	Clouds CloudSpec
	Marker MarkerSpec

	Toggles Toggles

	SkyboxBrightness float32
	ShadowFiltering  lighting.ShadowFiltering
	Controller       camera.Controller
	MarkerUpAxis     geo.Axis
}

func defaultTextures() map[Role]string {
	return map[Role]string{
		RoleDay:      "textures/earth_day.jpg",
		RoleNight:    "textures/earth_night.jpg",
		RoleNormal:   "textures/earth_normal.png",
		RoleSpecular: "textures/earth_specular.png",
		RoleClouds:   "textures/earth_clouds.png",
		RoleSkybox:   "textures/skybox.png",
	}
}

func helsinki() MarkerSpec {
	return MarkerSpec{
		Lat:          60.19206,
		Lon:          24.945831,
		Height:       2.0,
		Radius:       0.01,
		Subdivisions: 10,
		Color:        [3]float32{1, 0, 0},
	}
}

// PBR is the physically based variant: night lights, normal map, cloud occlusion and a skybox.
func PBR() Variant {
	uv := SphereMesh{Kind: MeshUV, Sectors: 512, Stacks: 512, Tangents: true}
	return Variant{
		Name:     "pbr",
		Textures: defaultTextures(),
		Globe: GlobeSpec{
			Radius:              1.0,
			Mesh:                uv,
			Emissive:            0.25,
			PerceptualRoughness: 0.75,
			Reflectance:         0.25,
			AlphaMode:           material.AlphaOpaque,
			Occlusion:           RoleClouds,
			MetallicRoughness:   RoleSpecular,
			NormalMapFixup:      true,
		},
		Clouds: CloudSpec{
			Radius:      1.01,
			Mesh:        uv,
			Color:       [4]float32{1, 1, 1, 0.8},
			AlphaMode:   material.AlphaToCoverage,
			DoubleSided: true,
		},
		Marker: helsinki(),
		Toggles: Toggles{
			DrawClouds: true,
			DayTexture: true,
			Skybox:     true,
		},
		SkyboxBrightness: 1000,
		ShadowFiltering:  lighting.FilterGaussian,
		Controller:       camera.ControllerSmooth,
		MarkerUpAxis:     geo.AxisZ,
	}
}

// Classic is the simpler variant: blended day or night texture, a slowly
// turning cloud layer, debug axes and a location marker.
func Classic() Variant {
	return Variant{
		Name:     "classic",
		Textures: defaultTextures(),
		Globe: GlobeSpec{
			Radius:              2.0,
			Mesh:                SphereMesh{Kind: MeshUV, Sectors: 64, Stacks: 32},
			PerceptualRoughness: 0.5,
			Reflectance:         0.5,
			AlphaMode:           material.AlphaBlend,
			Occlusion:           RoleSpecular,
		},
		Clouds: CloudSpec{
			Radius:    2.02,
			Mesh:      SphereMesh{Kind: MeshIco, Subdivisions: 5, Tangents: true},
			Color:     [4]float32{1, 1, 1, 1},
			AlphaMode: material.AlphaToCoverage,
			Spin:      rotation.Rotatable{SpeedX: 0.005},
		},
		Marker: helsinki(),
		Toggles: Toggles{
			DrawClouds:   true,
			DebugMarkers: true,
			DayTexture:   true,
		},
		ShadowFiltering: lighting.FilterGaussian,
		Controller:      camera.ControllerSmooth,
		MarkerUpAxis:    geo.AxisZ,
	}
}

var presets = map[string]func() Variant{
	"pbr":     PBR,
	"classic": Classic,
}

// Names returns the preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of the named preset.
func Lookup(name string) (Variant, error) {
	fn, ok := presets[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (want one of %v)", name, Names())
	}
	return fn(), nil
}

// FromConfig resolves the configured preset and applies the configured overrides.
func FromConfig(cfg *config.Config) (Variant, error) {
	v, err := Lookup(cfg.Globe.Variant)
	if err != nil {
		return Variant{}, err
	}

	g := cfg.Globe
	if g.DrawClouds != nil {
		v.Toggles.DrawClouds = *g.DrawClouds
	}
	if g.DebugMarkers != nil {
		v.Toggles.DebugMarkers = *g.DebugMarkers
	}
	if g.DayTexture != nil {
		v.Toggles.DayTexture = *g.DayTexture
	}
	if g.Skybox != nil {
		v.Toggles.Skybox = *g.Skybox
	}
	if g.CloudSpeed != nil {
		v.Clouds.Spin.SpeedX = *g.CloudSpeed
	}
	if v.MarkerUpAxis, err = geo.ParseAxis(g.MarkerUpAxis); err != nil {
		return Variant{}, err
	}
	if v.Controller, err = camera.ParseController(cfg.Camera.Controller); err != nil {
		return Variant{}, err
	}
	if v.ShadowFiltering, err = lighting.ParseShadowFiltering(cfg.Graphics.ShadowFiltering); err != nil {
		return Variant{}, err
	}
	for role, path := range cfg.Assets.Textures {
		if !knownRole(Role(role)) {
			return Variant{}, fmt.Errorf("unknown texture role %q", role)
		}
		v.Textures[Role(role)] = path
	}
	return v, nil
}

func knownRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
