package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"matengine/internal/logger"
	"matengine/shader"
)

// SetShader builds s on first use, binds it and uploads every uniform
// that changed since the last upload.
func (r *Renderer) SetShader(s *shader.Shader) error {
	if s == nil {
		return fmt.Errorf("set shader: nil shader")
	}
	id, ok := s.Handle.(uint32)
	if !ok {
		var err error
		if id, err = r.buildProgram(s); err != nil {
			logger.Log.Error("shader build failed",
				zap.String("key", s.Key().String()),
				zap.Error(err))
			return err
		}
	}

	switched := r.program != id
	if switched {
		gl.UseProgram(id)
		r.program = id
	}
	r.stats.OnShader(switched)

	for _, u := range s.Uniforms() {
		if !u.IsUpdateNeeded() {
			continue
		}
		r.uploadUniform(id, u)
	}
	return nil
}

func (r *Renderer) buildProgram(s *shader.Shader) (uint32, error) {
	var vertSrc, fragSrc string
	for _, src := range s.Sources() {
		text := versionDirective(src.Language) + src.Defines + src.Code
		switch src.Stage {
		case shader.StageVertex:
			vertSrc = text
		case shader.StageFragment:
			fragSrc = text
		}
	}
	if vertSrc == "" || fragSrc == "" {
		return 0, fmt.Errorf("shader %s: needs a vertex and a fragment source", s.Key())
	}
	id, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return 0, fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	s.Handle = id
	s.ResetLocations()
	r.programs[id] = s
	return id, nil
}

// ReleaseShader deletes the program built for s. The next SetShader
// rebuilds it.
func (r *Renderer) ReleaseShader(s *shader.Shader) {
	id, ok := s.Handle.(uint32)
	if !ok {
		return
	}
	gl.DeleteProgram(id)
	delete(r.programs, id)
	if r.program == id {
		r.program = 0
	}
	s.Handle = nil
	s.ResetLocations()
}

func (r *Renderer) uploadUniform(program uint32, u *shader.Uniform) {
	loc := u.Location()
	if loc == shader.LocationUnknown {
		loc = gl.GetUniformLocation(program, gl.Str(u.Name()+"\x00"))
		if loc < 0 {
			loc = shader.LocationNotDefined
		}
		u.SetLocation(loc)
	}
	if loc == shader.LocationNotDefined {
		// optimized out or never declared
		u.ClearUpdateNeeded()
		return
	}

	v := u.Value()
	f := v.Floats()
	switch v.Kind() {
	case shader.VarNone:
		u.ClearUpdateNeeded()
		return
	case shader.VarFloat:
		gl.Uniform1f(loc, v.Float())
	case shader.VarVector2:
		gl.Uniform2f(loc, f[0], f[1])
	case shader.VarVector3:
		gl.Uniform3f(loc, f[0], f[1], f[2])
	case shader.VarVector4:
		gl.Uniform4f(loc, f[0], f[1], f[2], f[3])
	case shader.VarBoolean:
		b := int32(0)
		if v.Bool() {
			b = 1
		}
		gl.Uniform1i(loc, b)
	case shader.VarInt:
		gl.Uniform1i(loc, int32(v.Int()))
	case shader.VarMatrix3:
		gl.UniformMatrix3fv(loc, 1, false, &f[0])
	case shader.VarMatrix4:
		gl.UniformMatrix4fv(loc, 1, false, &f[0])
	default:
		if len(f) == 0 {
			u.ClearUpdateNeeded()
			return
		}
		n := int32(v.Len())
		switch v.Kind() {
		case shader.VarFloatArray:
			gl.Uniform1fv(loc, n, &f[0])
		case shader.VarVector2Array:
			gl.Uniform2fv(loc, n, &f[0])
		case shader.VarVector3Array:
			gl.Uniform3fv(loc, n, &f[0])
		case shader.VarVector4Array:
			gl.Uniform4fv(loc, n, &f[0])
		case shader.VarMatrix3Array:
			gl.UniformMatrix3fv(loc, n, false, &f[0])
		case shader.VarMatrix4Array:
			gl.UniformMatrix4fv(loc, n, false, &f[0])
		default:
			logger.Log.Warn("uniform type not supported by the OpenGL backend",
				zap.String("uniform", u.Name()),
				zap.Stringer("type", v.Kind()))
		}
	}
	u.ClearUpdateNeeded()
	r.stats.OnUniformSet()
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	bindAttribLocations(prog)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return sh, nil
}
