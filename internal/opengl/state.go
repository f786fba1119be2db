package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"matengine/gpu"
)

var blendFactors = [...][2]uint32{
	gpu.BlendAdditive:      {gl.ONE, gl.ONE},
	gpu.BlendPremultAlpha:  {gl.ONE, gl.ONE_MINUS_SRC_ALPHA},
	gpu.BlendAlphaAdditive: {gl.SRC_ALPHA, gl.ONE},
	gpu.BlendColor:         {gl.ONE, gl.ONE_MINUS_SRC_COLOR},
	gpu.BlendAlpha:         {gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA},
	gpu.BlendModulate:      {gl.DST_COLOR, gl.ZERO},
	gpu.BlendModulateX2:    {gl.DST_COLOR, gl.SRC_COLOR},
	gpu.BlendScreen:        {gl.ONE, gl.ONE_MINUS_SRC_COLOR},
	gpu.BlendExclusion:     {gl.ONE_MINUS_DST_COLOR, gl.ONE_MINUS_SRC_COLOR},
}

var testFuncs = [...]uint32{
	gpu.FuncNever:          gl.NEVER,
	gpu.FuncEqual:          gl.EQUAL,
	gpu.FuncLess:           gl.LESS,
	gpu.FuncLessOrEqual:    gl.LEQUAL,
	gpu.FuncGreater:        gl.GREATER,
	gpu.FuncGreaterOrEqual: gl.GEQUAL,
	gpu.FuncNotEqual:       gl.NOTEQUAL,
	gpu.FuncAlways:         gl.ALWAYS,
}

var stencilOps = [...]uint32{
	gpu.StencilKeep:          gl.KEEP,
	gpu.StencilZero:          gl.ZERO,
	gpu.StencilReplace:       gl.REPLACE,
	gpu.StencilIncrement:     gl.INCR,
	gpu.StencilIncrementWrap: gl.INCR_WRAP,
	gpu.StencilDecrement:     gl.DECR,
	gpu.StencilDecrementWrap: gl.DECR_WRAP,
	gpu.StencilInvert:        gl.INVERT,
}

func enable(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// ApplyRenderState sets every group of rs that differs from the state
// last applied. Alpha testing is left to shaders: the core profile has
// no alpha test.
func (r *Renderer) ApplyRenderState(rs *gpu.RenderState) {
	cur := &r.state
	force := !r.stateValid
	r.stats.OnRenderState()

	if force || rs.Wireframe() != cur.Wireframe() {
		mode := uint32(gl.FILL)
		if rs.Wireframe() {
			mode = gl.LINE
		}
		gl.PolygonMode(gl.FRONT_AND_BACK, mode)
	}
	if force || rs.PointSprite() != cur.PointSprite() {
		enable(gl.PROGRAM_POINT_SIZE, rs.PointSprite())
	}
	if force || rs.CullMode() != cur.CullMode() {
		switch rs.CullMode() {
		case gpu.CullOff:
			gl.Disable(gl.CULL_FACE)
		case gpu.CullFront:
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.FRONT)
		case gpu.CullBack:
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		case gpu.CullFrontAndBack:
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.FRONT_AND_BACK)
		}
	}
	if force || rs.DepthTest() != cur.DepthTest() {
		enable(gl.DEPTH_TEST, rs.DepthTest())
	}
	if force || rs.DepthFunc() != cur.DepthFunc() {
		gl.DepthFunc(testFuncs[rs.DepthFunc()])
	}
	if force || rs.DepthWrite() != cur.DepthWrite() {
		gl.DepthMask(rs.DepthWrite())
	}
	if force || rs.ColorWrite() != cur.ColorWrite() {
		c := rs.ColorWrite()
		gl.ColorMask(c, c, c, c)
	}
	if force || rs.PolyOffset() != cur.PolyOffset() {
		po := rs.PolyOffset()
		enable(gl.POLYGON_OFFSET_FILL, po.Enabled)
		if po.Enabled {
			gl.PolygonOffset(po.Factor, po.Units)
		}
	}
	if force || rs.BlendMode() != cur.BlendMode() {
		if rs.BlendMode() == gpu.BlendOff {
			gl.Disable(gl.BLEND)
		} else {
			f := blendFactors[rs.BlendMode()]
			gl.Enable(gl.BLEND)
			gl.BlendFunc(f[0], f[1])
		}
	}
	if force || rs.Stencil() != cur.Stencil() {
		s := rs.Stencil()
		enable(gl.STENCIL_TEST, s.Enabled)
		if s.Enabled {
			gl.StencilOpSeparate(gl.FRONT, stencilOps[s.FrontStencilFail], stencilOps[s.FrontDepthFail], stencilOps[s.FrontDepthPass])
			gl.StencilOpSeparate(gl.BACK, stencilOps[s.BackStencilFail], stencilOps[s.BackDepthFail], stencilOps[s.BackDepthPass])
			gl.StencilFuncSeparate(gl.FRONT, testFuncs[s.FrontFunc], 0, ^uint32(0))
			gl.StencilFuncSeparate(gl.BACK, testFuncs[s.BackFunc], 0, ^uint32(0))
		}
	}
	if force || rs.LineWidth() != cur.LineWidth() {
		gl.LineWidth(rs.LineWidth())
	}

	r.state = *rs
	r.stateValid = true
}
