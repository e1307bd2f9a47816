// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// StandardVertexShader is the vertex shader for lit meshes.
//
//go:embed standard.vert
var StandardVertexShader string

// StandardFragmentShader shades meshes with a metallic-roughness BRDF.
//
//go:embed standard.frag
var StandardFragmentShader string

// SkyboxVertexShader is the vertex shader for the cubemap background.
//
//go:embed skybox.vert
var SkyboxVertexShader string

// SkyboxFragmentShader is the fragment shader for the cubemap background.
//
//go:embed skybox.frag
var SkyboxFragmentShader string

// ShadowVertexShader is the depth-only vertex shader for the shadow pass.
//
//go:embed shadow.vert
var ShadowVertexShader string

// ShadowFragmentShader is the depth-only fragment shader for the shadow pass.
//
//go:embed shadow.frag
var ShadowFragmentShader string
