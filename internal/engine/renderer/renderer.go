// Package renderer draws a globe scene with OpenGL.
package renderer

import (
	"fmt"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/engine/camera"
	"github.com/Faultbox/globe/internal/engine/lighting"
	"github.com/Faultbox/globe/internal/engine/material"
	"github.com/Faultbox/globe/internal/engine/mesh"
	"github.com/Faultbox/globe/internal/engine/renderer/shaders"
	"github.com/Faultbox/globe/internal/engine/shader"
	"github.com/Faultbox/globe/internal/engine/shadow"
	"github.com/Faultbox/globe/internal/engine/texture"
	"github.com/Faultbox/globe/internal/logger"
	"github.com/Faultbox/globe/internal/scene"
	"github.com/Faultbox/globe/pkg/math"
)

// Texture units used by the standard shader.
const (
	unitBaseColor = iota
	unitEmissive
	unitNormal
	unitOcclusion
	unitMetallicRoughness
	unitShadow
)

// Config holds renderer configuration.
type Config struct {
	Width            int
	Height           int
	MSAA             int
	ShadowResolution int32
	ShadowFiltering  lighting.ShadowFiltering
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config   Config
	exposure float32
	log      *zap.Logger

	standard   uint32
	loc        standardUniforms
	skybox     uint32
	skyboxVAO  uint32
	skyboxVBO  uint32
	locSkyVP   int32
	locSkyTex  int32
	locSkyBri  int32
	shadowProg uint32
	locShLVP   int32
	locShModel int32

	shadowMap *shadow.Map
	meshes    map[*mesh.Mesh]*gpuMesh
	textures  *textureCache
}

type standardUniforms struct {
	model, viewProj, normalMatrix, lightViewProj int32

	baseColorTex, emissiveTex, normalTex, occlusionTex, mrTex, shadowMap int32

	hasNormalMap, hasTangents, unlit, doubleSided, shadowsEnabled, gaussian int32

	baseColor, emissive, roughness, metallic, f0 int32

	cameraPos, lightDir, lightColor, ambient, shadowTexel int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		exposure: lighting.Exposure(lighting.DefaultEV100),
		log:      logger.Named("renderer"),
		meshes:   make(map[*mesh.Mesh]*gpuMesh),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	var samples int32
	gl.GetIntegerv(gl.SAMPLES, &samples)
	r.log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Int32("samples", samples),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.FRAMEBUFFER_SRGB)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	if cfg.MSAA > 1 {
		gl.Enable(gl.MULTISAMPLE)
	}

	var err error
	if r.standard, err = shader.CompileProgram(shaders.StandardVertexShader, shaders.StandardFragmentShader); err != nil {
		return nil, fmt.Errorf("standard shader: %w", err)
	}
	r.lookupStandardUniforms()

	if r.skybox, err = shader.CompileProgram(shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("skybox shader: %w", err)
	}
	r.locSkyVP = shader.GetUniform(r.skybox, "uViewRotProj")
	r.locSkyTex = shader.GetUniform(r.skybox, "uSkybox")
	r.locSkyBri = shader.GetUniform(r.skybox, "uBrightness")
	r.skyboxVAO, r.skyboxVBO = uploadSkyboxCube()

	if r.shadowProg, err = shader.CompileProgram(shaders.ShadowVertexShader, shaders.ShadowFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("shadow shader: %w", err)
	}
	r.locShLVP = shader.MustGetUniform(r.shadowProg, "uLightViewProj")
	r.locShModel = shader.MustGetUniform(r.shadowProg, "uModel")

	if r.shadowMap, err = shadow.NewMap(cfg.ShadowResolution); err != nil {
		// Draw unshadowed without a shadow FBO
		r.log.Warn("shadow map unavailable", zap.Error(err))
		r.shadowMap = nil
	} else {
		r.log.Debug("shadow map created", zap.Int32("resolution", r.shadowMap.Resolution))
	}

	r.textures = newTextureCache()
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

func (r *Renderer) lookupStandardUniforms() {
	p := r.standard
	u := func(name string) int32 { return shader.GetUniform(p, name) }
	r.loc = standardUniforms{
		model:          u("uModel"),
		viewProj:       u("uViewProj"),
		normalMatrix:   u("uNormalMatrix"),
		lightViewProj:  u("uLightViewProj"),
		baseColorTex:   u("uBaseColorTex"),
		emissiveTex:    u("uEmissiveTex"),
		normalTex:      u("uNormalTex"),
		occlusionTex:   u("uOcclusionTex"),
		mrTex:          u("uMetallicRoughnessTex"),
		shadowMap:      u("uShadowMap"),
		hasNormalMap:   u("uHasNormalMap"),
		hasTangents:    u("uHasTangents"),
		unlit:          u("uUnlit"),
		doubleSided:    u("uDoubleSided"),
		shadowsEnabled: u("uShadowsEnabled"),
		gaussian:       u("uGaussianShadows"),
		baseColor:      u("uBaseColor"),
		emissive:       u("uEmissive"),
		roughness:      u("uRoughness"),
		metallic:       u("uMetallic"),
		f0:             u("uF0"),
		cameraPos:      u("uCameraPos"),
		lightDir:       u("uLightDir"),
		lightColor:     u("uLightColor"),
		ambient:        u("uAmbient"),
		shadowTexel:    u("uShadowTexel"),
	}
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, m := range r.meshes {
		m.destroy()
	}
	r.meshes = make(map[*mesh.Mesh]*gpuMesh)
	if r.textures != nil {
		r.textures.destroy()
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.skyboxVAO != 0 {
		gl.DeleteVertexArrays(1, &r.skyboxVAO)
	}
	if r.skyboxVBO != 0 {
		gl.DeleteBuffers(1, &r.skyboxVBO)
	}
	for _, p := range []uint32{r.standard, r.skybox, r.shadowProg} {
		if p != 0 {
			gl.DeleteProgram(p)
		}
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) { return r.config.Width, r.config.Height }

func (r *Renderer) meshFor(m *mesh.Mesh) *gpuMesh {
	g, ok := r.meshes[m]
	if !ok {
		g = uploadMesh(m)
		r.meshes[m] = g
	}
	return g
}

// Render draws one frame of s as seen from cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.OrbitCamera) {
	aspect := float32(1)
	if r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(aspect)
	viewProj := proj.Mul(view)

	var opaque, blended []*scene.Entity
	for _, e := range s.Entities {
		if !e.Visible || e.Mesh == nil {
			continue
		}
		if e.Material.Transparent() {
			blended = append(blended, e)
		} else {
			opaque = append(opaque, e)
		}
	}

	lightDir := s.Light.Direction()
	lightViewProj := math.Identity()
	shadows := s.Light.Shadows && r.shadowMap.IsValid()
	if shadows {
		lightViewProj = shadow.DirectionalLightMatrix(lightDir, shadow.Sphere{Radius: s.BoundingRadius()})
		r.renderShadows(lightViewProj, opaque, blended)
	}

	gl.ClearColor(s.Clear[0], s.Clear[1], s.Clear[2], s.Clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	eye := cam.Eye()
	gl.UseProgram(r.standard)
	gl.UniformMatrix4fv(r.loc.viewProj, 1, false, viewProj.Ptr())
	shadowCoords := shadow.Bias.Mul(lightViewProj)
	gl.UniformMatrix4fv(r.loc.lightViewProj, 1, false, shadowCoords.Ptr())
	gl.Uniform3f(r.loc.cameraPos, eye.X, eye.Y, eye.Z)
	gl.Uniform3f(r.loc.lightDir, lightDir.X, lightDir.Y, lightDir.Z)
	lc := s.Light.Radiance(r.exposure)
	gl.Uniform3f(r.loc.lightColor, lc[0], lc[1], lc[2])
	amb := s.Ambient.Radiance(r.exposure)
	gl.Uniform3f(r.loc.ambient, amb[0], amb[1], amb[2])
	gl.Uniform1i(r.loc.baseColorTex, unitBaseColor)
	gl.Uniform1i(r.loc.emissiveTex, unitEmissive)
	gl.Uniform1i(r.loc.normalTex, unitNormal)
	gl.Uniform1i(r.loc.occlusionTex, unitOcclusion)
	gl.Uniform1i(r.loc.mrTex, unitMetallicRoughness)
	gl.Uniform1i(r.loc.shadowMap, unitShadow)
	gl.Uniform1i(r.loc.shadowsEnabled, boolInt(shadows))
	gl.Uniform1i(r.loc.gaussian, boolInt(r.config.ShadowFiltering == lighting.FilterGaussian))
	if shadows {
		r.shadowMap.BindTexture(gl.TEXTURE0 + unitShadow)
		gl.Uniform1f(r.loc.shadowTexel, 1/float32(r.shadowMap.Resolution))
	}

	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	for _, e := range opaque {
		r.drawEntity(s, e)
	}

	r.renderSkybox(s, view, proj)

	// Back to front in view space for blending
	sort.SliceStable(blended, func(i, j int) bool {
		return view.TransformVec3(blended[i].Transform.Translation).Z < view.TransformVec3(blended[j].Transform.Translation).Z
	})
	if len(blended) > 0 {
		gl.UseProgram(r.standard)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		for _, e := range blended {
			r.drawEntity(s, e)
		}
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}

	gl.Enable(gl.CULL_FACE)
	gl.BindVertexArray(0)
}

func (r *Renderer) drawEntity(s *scene.Scene, e *scene.Entity) {
	m := e.Material
	model := e.Transform.Matrix()
	normal := model.NormalMatrix()
	gl.UniformMatrix4fv(r.loc.model, 1, false, model.Ptr())
	gl.UniformMatrix4fv(r.loc.normalMatrix, 1, false, normal.Ptr())

	gl.Uniform4f(r.loc.baseColor, m.BaseColor[0], m.BaseColor[1], m.BaseColor[2], m.BaseColor[3])
	gl.Uniform3f(r.loc.emissive, m.Emissive[0], m.Emissive[1], m.Emissive[2])
	gl.Uniform1f(r.loc.roughness, m.Roughness())
	gl.Uniform1f(r.loc.metallic, m.Metallic)
	gl.Uniform1f(r.loc.f0, m.F0())
	gl.Uniform1i(r.loc.unlit, boolInt(m.Unlit))
	gl.Uniform1i(r.loc.doubleSided, boolInt(m.DoubleSided))
	gl.Uniform1i(r.loc.hasTangents, boolInt(e.Mesh.HasTangents))

	r.bind(unitBaseColor, r.textures.getOrWhite(m.BaseColorTexture, s))
	r.bind(unitEmissive, r.textures.getOrWhite(m.EmissiveTexture, s))
	r.bind(unitOcclusion, r.textures.getOrWhite(m.OcclusionTexture, s))
	r.bind(unitMetallicRoughness, r.textures.getOrWhite(m.MetallicRoughnessTexture, s))
	normalTex, hasNormal := r.textures.get(m.NormalMapTexture, s)
	hasNormal = hasNormal && normalTex.view == texture.View2D
	if hasNormal {
		r.bind(unitNormal, normalTex.id)
	} else {
		r.bind(unitNormal, r.textures.white)
	}
	gl.Uniform1i(r.loc.hasNormalMap, boolInt(hasNormal))

	if m.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}
	if m.AlphaMode == material.AlphaToCoverage {
		gl.Enable(gl.SAMPLE_ALPHA_TO_COVERAGE)
	}
	r.meshFor(e.Mesh).draw()
	gl.Disable(gl.SAMPLE_ALPHA_TO_COVERAGE)
}

func (r *Renderer) bind(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (r *Renderer) renderShadows(lightViewProj math.Mat4, groups ...[]*scene.Entity) {
	r.shadowMap.Bind()
	gl.UseProgram(r.shadowProg)
	gl.UniformMatrix4fv(r.locShLVP, 1, false, lightViewProj.Ptr())
	for _, g := range groups {
		for _, e := range g {
			if e.Material.Unlit {
				continue
			}
			model := e.Transform.Matrix()
			gl.UniformMatrix4fv(r.locShModel, 1, false, model.Ptr())
			r.meshFor(e.Mesh).draw()
		}
	}
	r.shadowMap.Unbind()
}

func (r *Renderer) renderSkybox(s *scene.Scene, view, proj math.Mat4) {
	if s.Skybox == nil || !s.Skybox.Texture.Ready() {
		return
	}
	tex, ok := r.textures.get(s.Skybox.Texture.Handle, s)
	if !ok || tex.view != texture.ViewCube && tex.view != texture.ViewCubeArray {
		return
	}
	vp := proj.Mul(view.WithoutTranslation())

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.Disable(gl.CULL_FACE)
	gl.UseProgram(r.skybox)
	gl.UniformMatrix4fv(r.locSkyVP, 1, false, vp.Ptr())
	gl.Uniform1f(r.locSkyBri, s.Skybox.Brightness*r.exposure)
	gl.Uniform1i(r.locSkyTex, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex.id)
	gl.BindVertexArray(r.skyboxVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ReadPixels returns the default framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
