// Package scene builds the globe scene from a declarative variant and keeps it
// updated frame by frame.
package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/assets"
	"github.com/Faultbox/globe/internal/engine/deferred"
	"github.com/Faultbox/globe/internal/engine/lighting"
	"github.com/Faultbox/globe/internal/engine/material"
	"github.com/Faultbox/globe/internal/engine/mesh"
	"github.com/Faultbox/globe/internal/engine/rotation"
	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/internal/engine/transform"
	"github.com/Faultbox/globe/internal/logger"
	"github.com/Faultbox/globe/pkg/geo"
	"github.com/Faultbox/globe/pkg/math"
)

// Loader is the asset side the scene needs: requests plus polled state.
type Loader interface {
	Load(path string) assets.Handle
	deferred.Source
}

// Kind tags what an entity is.
type Kind int

const (
	KindGlobe Kind = iota
	KindClouds
	KindAxis
	KindMarker
)

// Entity is one drawable object.
type Entity struct {
	ID        uint32
	Name      string
	Kind      Kind
	Transform transform.Transform
	Mesh      *mesh.Mesh
	Material  material.Standard
	Visible   bool
}

// CameraRig is the initial camera placement.
type CameraRig struct {
	Eye, Target, Up math.Vec3
	MSAA            int
}

// Skybox is a cube-mapped background.
type Skybox struct {
	Texture    *deferred.Texture
	Brightness float32
}

// Scene is the spawned globe scene.
type Scene struct {
	Variant  Variant
	Entities []*Entity

	Light   lighting.DirectionalLight
	Ambient lighting.Ambient
	Clear   lighting.ClearColor
	Camera  CameraRig
	Skybox  *Skybox

	textures map[Role]assets.Handle
	fixups   deferred.Set
	byHandle map[assets.Handle]*deferred.Texture
	rotation *rotation.System
	loader   Loader
	toggles  Toggles
	nextID   uint32

	globe    *Entity
	clouds   *Entity
	cloudsOn bool
	debug    []*Entity
}

// Setup requests the variant's textures and spawns its entities.
func Setup(v Variant, loader Loader) (*Scene, error) {
	s := &Scene{
		Variant:  v,
		Clear:    lighting.Black,
		Ambient:  lighting.Ambient{Brightness: 0.1},
		textures: make(map[Role]assets.Handle),
		byHandle: make(map[assets.Handle]*deferred.Texture),
		rotation: rotation.NewSystem(),
		loader:   loader,
		toggles:  v.Toggles,
		Camera: CameraRig{
			Eye:    math.Vec3{X: -2, Y: 5, Z: 5},
			Target: math.Vec3{},
			Up:     math.Vec3Y,
			MSAA:   4,
		},
	}
	s.Light = lighting.NewDirectionalLight(10000, true, math.Vec3{X: -4, Y: 4, Z: 4}, math.Vec3{}, math.Vec3Y)

	s.loadTextures()

	if err := s.spawnDebugAxes(); err != nil {
		return nil, err
	}
	if err := s.spawnGlobe(); err != nil {
		return nil, err
	}
	if err := s.showClouds(s.toggles.DrawClouds); err != nil {
		return nil, err
	}
	if err := s.spawnMarker(); err != nil {
		return nil, err
	}
	s.spawnSkybox()
	s.applyToggles()

	logger.Named("scene").Info("scene ready",
		zap.String("variant", v.Name),
		zap.Int("entities", len(s.Entities)),
		zap.Bool("clouds", s.toggles.DrawClouds),
		zap.Bool("debug_markers", s.toggles.DebugMarkers),
		zap.Bool("day", s.toggles.DayTexture),
		zap.Bool("skybox", s.Skybox != nil),
	)
	return s, nil
}

func (s *Scene) loadTextures() {
	g := s.Variant.Globe
	need := map[Role]bool{
		RoleDay:             true,
		RoleNight:           true,
		RoleNormal:          true,
		RoleClouds:          true,
		RoleSkybox:          s.Variant.Toggles.Skybox,
		g.Occlusion:         g.Occlusion != "",
		g.MetallicRoughness: g.MetallicRoughness != "",
	}

	for _, role := range Roles {
		path := s.Variant.Textures[role]
		if !need[role] || path == "" {
			continue
		}
		s.textures[role] = s.loader.Load(path)
	}

	if s.Variant.Globe.NormalMapFixup {
		if h, ok := s.textures[RoleNormal]; ok {
			s.addFixup(deferred.New(string(RoleNormal), h, deferred.NormalMapFixup))
		}
	}
}

func (s *Scene) addFixup(t *deferred.Texture) *deferred.Texture {
	s.fixups.Add(t)
	s.byHandle[t.Handle] = t
	return t
}

func (s *Scene) newEntity(e *Entity) *Entity {
	s.nextID++
	e.ID = s.nextID
	e.Visible = true
	if e.Transform.Scale == (math.Vec3{}) {
		e.Transform.Scale = math.Vec3One
	}
	return e
}

func (s *Scene) spawn(e *Entity) *Entity {
	s.Entities = append(s.Entities, s.newEntity(e))
	return e
}

func (s *Scene) despawn(e *Entity) {
	for i, x := range s.Entities {
		if x == e {
			s.Entities = append(s.Entities[:i], s.Entities[i+1:]...)
			break
		}
	}
	s.rotation.Remove(e.ID)
}

func (s *Scene) spawnDebugAxes() error {
	rotations := []math.Quat{
		math.QuatIdentity(),
		math.QuatFromRotationX(math32.Pi / 2),
		math.QuatFromRotationX(math32.Pi / 2).Mul(math.QuatFromRotationZ(math32.Pi / 2)),
	}
	colors := [][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	names := []string{"axis-red", "axis-green", "axis-blue"}

	for i := range rotations {
		m, err := mesh.Capsule(0.005, 5.0, 16, 32)
		if err != nil {
			return fmt.Errorf("debug axis: %w", err)
		}
		mat := material.Color(colors[i][0], colors[i][1], colors[i][2])
		mat.Unlit = true
		s.debug = append(s.debug, s.spawn(&Entity{
			Name:      names[i],
			Kind:      KindAxis,
			Transform: transform.FromRotation(rotations[i]),
			Mesh:      m,
			Material:  mat,
		}))
	}
	return nil
}

func buildSphere(radius float32, shape SphereMesh) (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	switch shape.Kind {
	case MeshIco:
		m, err = mesh.Icosphere(radius, shape.Subdivisions)
	default:
		m, err = mesh.UVSphere(radius, shape.Sectors, shape.Stacks)
	}
	if err != nil {
		return nil, err
	}
	if shape.Tangents {
		if err := m.GenerateTangents(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *Scene) spawnGlobe() error {
	g := s.Variant.Globe
	m, err := buildSphere(g.Radius, g.Mesh)
	if err != nil {
		return fmt.Errorf("globe mesh: %w", err)
	}

	mat := material.Default()
	mat.PerceptualRoughness = g.PerceptualRoughness
	mat.Reflectance = g.Reflectance
	mat.AlphaMode = g.AlphaMode
	mat.NormalMapTexture = s.textures[RoleNormal]
	if g.Occlusion != "" {
		mat.OcclusionTexture = s.textures[g.Occlusion]
	}
	if g.MetallicRoughness != "" {
		mat.MetallicRoughnessTexture = s.textures[g.MetallicRoughness]
	}

	s.globe = s.spawn(&Entity{
		Name:      "globe",
		Kind:      KindGlobe,
		Transform: transform.FromRotation(math.QuatFromRotationZ(math32.Pi)),
		Mesh:      m,
		Material:  mat,
	})
	return nil
}

// showClouds spawns or despawns the cloud layer. The mesh is built on first show
// and kept for later toggles.
func (s *Scene) showClouds(on bool) error {
	if on == s.cloudsOn {
		return nil
	}
	if !on {
		s.despawn(s.clouds)
		s.cloudsOn = false
		return nil
	}
	if s.clouds == nil {
		if err := s.buildClouds(); err != nil {
			return err
		}
	}
	s.Entities = append(s.Entities, s.clouds)
	if spin := s.Variant.Clouds.Spin; !spin.IsZero() {
		s.rotation.Add(s.clouds.ID, &s.clouds.Transform, spin)
	}
	s.cloudsOn = true
	return nil
}

func (s *Scene) buildClouds() error {
	c := s.Variant.Clouds
	m, err := buildSphere(c.Radius, c.Mesh)
	if err != nil {
		return fmt.Errorf("cloud mesh: %w", err)
	}

	mat := material.Default()
	mat.BaseColor = c.Color
	mat.BaseColorTexture = s.textures[RoleClouds]
	mat.AlphaMode = c.AlphaMode
	mat.DoubleSided = c.DoubleSided

	s.clouds = s.newEntity(&Entity{
		Name:      "clouds",
		Kind:      KindClouds,
		Transform: transform.FromRotation(math.QuatFromRotationZ(math32.Pi)),
		Mesh:      m,
		Material:  mat,
	})
	return nil
}

func (s *Scene) spawnMarker() error {
	mk := s.Variant.Marker
	m, err := mesh.Icosphere(mk.Radius, mk.Subdivisions)
	if err != nil {
		return fmt.Errorf("marker mesh: %w", err)
	}
	pos := geo.ToCartesianUp(mk.Lat, mk.Lon, mk.Height, s.Variant.MarkerUpAxis)
	p := pos.Array()
	mat := material.Color(mk.Color[0], mk.Color[1], mk.Color[2])
	mat.Unlit = true
	s.debug = append(s.debug, s.spawn(&Entity{
		Name:      "marker",
		Kind:      KindMarker,
		Transform: transform.FromTranslation(pos),
		Mesh:      m,
		Material:  mat,
	}))
	logger.Named("scene").Debug("marker placed",
		zap.Float32("lat", mk.Lat),
		zap.Float32("lon", mk.Lon),
		zap.Stringer("up", s.Variant.MarkerUpAxis),
		zap.Float32s("position", p[:]),
	)
	return nil
}

func (s *Scene) spawnSkybox() {
	h, ok := s.textures[RoleSkybox]
	if !ok || !s.Variant.Toggles.Skybox {
		return
	}
	s.Skybox = &Skybox{
		Texture:    s.addFixup(deferred.New(string(RoleSkybox), h, deferred.CubemapFixup)),
		Brightness: s.Variant.SkyboxBrightness,
	}
}

func (s *Scene) applyToggles() {
	for _, e := range s.debug {
		e.Visible = s.toggles.DebugMarkers
	}

	mat := &s.globe.Material
	mat.EmissiveTexture = assets.Handle{}
	mat.Emissive = [3]float32{}
	if s.toggles.DayTexture {
		mat.BaseColorTexture = s.textures[RoleDay]
		if e := s.Variant.Globe.Emissive; e > 0 {
			mat.EmissiveTexture = s.textures[RoleNight]
			mat.Emissive = [3]float32{e, e, e}
		}
	} else {
		mat.BaseColorTexture = s.textures[RoleNight]
	}
}

// Update runs the per-frame systems: texture fixups and rotation.
func (s *Scene) Update(dt float32) {
	s.fixups.Poll(s.loader)
	s.rotation.Update(dt)
}

// Toggles returns the current runtime switches.
func (s *Scene) Toggles() Toggles { return s.toggles }

// SetDrawClouds spawns or despawns the cloud layer.
func (s *Scene) SetDrawClouds(on bool) error {
	if err := s.showClouds(on); err != nil {
		return err
	}
	s.toggles.DrawClouds = on
	return nil
}

// SetDebugMarkers shows or hides the debug axes and marker.
func (s *Scene) SetDebugMarkers(on bool) {
	s.toggles.DebugMarkers = on
	s.applyToggles()
}

// SetDayTexture switches the globe between the day and night textures.
func (s *Scene) SetDayTexture(on bool) {
	s.toggles.DayTexture = on
	s.applyToggles()
}

// Globe returns the globe entity.
func (s *Scene) Globe() *Entity { return s.globe }

// Clouds returns the cloud layer entity, nil until the layer is first shown.
func (s *Scene) Clouds() *Entity { return s.clouds }

// Texture returns the handle requested for role.
func (s *Scene) Texture(role Role) (assets.Handle, bool) {
	h, ok := s.textures[role]
	return h, ok
}

// TextureReady reports whether h can be uploaded: loaded, and fixed up if it needs a fixup.
func (s *Scene) TextureReady(h assets.Handle) bool {
	if t, ok := s.byHandle[h]; ok {
		return t.Ready()
	}
	return s.loader.State(h) == assets.Ready
}

// Image returns the decoded pixels behind h.
func (s *Scene) Image(h assets.Handle) (*texture.Image, bool) { return s.loader.Image(h) }

// LoadingTextures counts the textures of visible entities that cannot be uploaded yet.
func (s *Scene) LoadingTextures() int {
	n := 0
	for _, e := range s.Entities {
		if !e.Visible {
			continue
		}
		for _, h := range e.Material.Textures() {
			if !s.TextureReady(h) {
				n++
			}
		}
	}
	return n
}

// PendingFixups returns how many deferred textures still wait for their asset.
func (s *Scene) PendingFixups() int { return s.fixups.Pending() }

// BoundingRadius returns the radius around the origin enclosing every visible entity.
func (s *Scene) BoundingRadius() float32 {
	var r float32
	for _, e := range s.Entities {
		if !e.Visible || e.Mesh == nil {
			continue
		}
		b := e.Mesh.Bounds
		var ext float32
		for i := 0; i < 3; i++ {
			ext = math32.Max(ext, math32.Max(math32.Abs(b.Min[i]), math32.Abs(b.Max[i])))
		}
		d := e.Transform.Translation.Length() + ext*math32.Sqrt(3)
		r = math32.Max(r, d)
	}
	return r
}
