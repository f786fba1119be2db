package opengl

import (
	"strconv"
	"strings"

	"matengine/gpu"
)

// parseVersion reads "major.minor" from the start of a GL version
// string such as "4.1 Metal - 76.3" or "OpenGL ES 3.0".
func parseVersion(s string) (major, minor int) {
	s = strings.TrimPrefix(s, "OpenGL ES GLSL ES ")
	s = strings.TrimPrefix(s, "OpenGL ES ")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, 0
	}
	parts := strings.SplitN(fields[0], ".", 3)
	major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		// "4.10" is GLSL 4.10, "4.1" is GL 4.1
		m := parts[1]
		if len(m) > 1 {
			m = m[:len(m)-1]
		}
		minor, _ = strconv.Atoi(m)
	}
	return major, minor
}

// capsFor derives the capability set of a context from its GL and GLSL
// version strings.
func capsFor(glVersion, glslVersion string) gpu.CapSet {
	caps := gpu.NewCapSet()
	glMajor, glMinor := parseVersion(glVersion)
	gl := glMajor*10 + glMinor

	glLevels := []struct {
		min int
		cap gpu.Caps
	}{
		{20, gpu.CapOpenGL20}, {21, gpu.CapOpenGL21}, {30, gpu.CapOpenGL30},
		{31, gpu.CapOpenGL31}, {32, gpu.CapOpenGL32}, {33, gpu.CapOpenGL33},
		{40, gpu.CapOpenGL40}, {41, gpu.CapOpenGL41},
	}
	for _, l := range glLevels {
		if gl >= l.min {
			caps = caps.Add(l.cap)
		}
	}

	slMajor, slMinor := parseVersion(glslVersion)
	glsl := slMajor*100 + slMinor*10
	if glsl > 0 {
		caps = caps.Add(gpu.CapGLSL100)
	}
	glslLevels := []struct {
		min int
		cap gpu.Caps
	}{
		{110, gpu.CapGLSL110}, {120, gpu.CapGLSL120}, {130, gpu.CapGLSL130},
		{140, gpu.CapGLSL140}, {150, gpu.CapGLSL150}, {330, gpu.CapGLSL330},
		{400, gpu.CapGLSL400}, {410, gpu.CapGLSL410},
	}
	for _, l := range glslLevels {
		if glsl >= l.min {
			caps = caps.Add(l.cap)
		}
	}

	if gl >= 20 {
		caps = caps.Add(gpu.CapNonPowerOfTwoTextures)
	}
	if gl >= 30 {
		caps = caps.Union(gpu.NewCapSet(
			gpu.CapFrameBuffer, gpu.CapFrameBufferMRT, gpu.CapFrameBufferMultisample,
			gpu.CapFloatTexture, gpu.CapFloatColorBuffer, gpu.CapFloatDepthBuffer,
			gpu.CapTextureArray, gpu.CapVertexBufferArray, gpu.CapVertexTextureFetch,
		))
	}
	if gl >= 31 {
		caps = caps.Union(gpu.NewCapSet(gpu.CapTextureBuffer, gpu.CapInstancing))
	}
	if gl >= 32 {
		caps = caps.Union(gpu.NewCapSet(gpu.CapTextureMultisample, gpu.CapSeamlessCubemap))
	}
	if gl >= 33 {
		caps = caps.Add(gpu.CapMeshInstancing)
	}
	return caps
}

// versionDirective returns the #version line for a shader language
// name such as "GLSL330".
func versionDirective(language string) string {
	v := strings.TrimPrefix(language, "GLSL")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 100 {
		return "#version 110\n"
	}
	if n >= 150 {
		return "#version " + v + " core\n"
	}
	return "#version " + v + "\n"
}
