// Package light defines the light sources a material can be lit by.
package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
)

// Type identifies the kind of a light. The numeric value is
// written into the alpha channel of the light color uniform.
type Type int

const (
	TypeDirectional Type = iota
	TypePoint
	TypeSpot
	TypeAmbient
)

func (t Type) String() string {
	switch t {
	case TypeDirectional:
		return "Directional"
	case TypePoint:
		return "Point"
	case TypeSpot:
		return "Spot"
	case TypeAmbient:
		return "Ambient"
	}
	return "Unknown"
}

// ID returns the value shaders use to recognize the light type.
func (t Type) ID() float32 { return float32(t) }

// Light is a light source.
type Light interface {
	Type() Type
	Color() core.Color
	Name() string
}

// Base holds the fields common to all lights.
type Base struct {
	LightName  string
	LightColor core.Color
}

func (b *Base) Color() core.Color { return b.LightColor }
func (b *Base) Name() string      { return b.LightName }

// Ambient lights every surface uniformly.
type Ambient struct {
	Base
}

func NewAmbient(color core.Color) *Ambient {
	return &Ambient{Base{LightColor: color}}
}

func (*Ambient) Type() Type { return TypeAmbient }

// Directional shines along Direction from infinitely far away, like the sun.
type Directional struct {
	Base
	Direction mgl32.Vec3
}

func NewDirectional(color core.Color, direction mgl32.Vec3) *Directional {
	return &Directional{Base: Base{LightColor: color}, Direction: direction.Normalize()}
}

func (*Directional) Type() Type { return TypeDirectional }

// Point is an omnidirectional light attenuated over Radius.
// A zero Radius means no attenuation.
type Point struct {
	Base
	Position mgl32.Vec3
	Radius   float32
}

func NewPoint(color core.Color, position mgl32.Vec3, radius float32) *Point {
	return &Point{Base: Base{LightColor: color}, Position: position, Radius: radius}
}

func (*Point) Type() Type { return TypePoint }

// InvRadius returns 1/Radius, or 0 when the radius is 0.
func (p *Point) InvRadius() float32 {
	if p.Radius == 0 {
		return 0
	}
	return 1 / p.Radius
}

// Spot light defaults.
const (
	DefaultSpotRange      = 100
	DefaultSpotInnerAngle = math32.Pi / (4 * 8)
	DefaultSpotOuterAngle = math32.Pi / (4 * 6)
)

// Spot is a cone light. Angles are in radians.
type Spot struct {
	Base
	Position   mgl32.Vec3
	Direction  mgl32.Vec3
	Range      float32
	InnerAngle float32
	OuterAngle float32
}

func NewSpot(color core.Color, position, direction mgl32.Vec3) *Spot {
	return &Spot{
		Base:       Base{LightColor: color},
		Position:   position,
		Direction:  direction.Normalize(),
		Range:      DefaultSpotRange,
		InnerAngle: DefaultSpotInnerAngle,
		OuterAngle: DefaultSpotOuterAngle,
	}
}

func (*Spot) Type() Type { return TypeSpot }

// InvRange returns 1/Range, or 0 when the range is 0.
func (s *Spot) InvRange() float32 {
	if s.Range == 0 {
		return 0
	}
	return 1 / s.Range
}

// OuterAngleCos returns the cosine of the outer cone angle.
// It is nudged below the inner cosine when both round to the
// same thousandth so the shader can always tell them apart.
func (s *Spot) OuterAngleCos() float32 {
	innerCos := math32.Cos(s.InnerAngle)
	outerCos := math32.Cos(s.OuterAngle)
	if int(innerCos*1000) == int(outerCos*1000) {
		outerCos -= 0.001
	}
	return outerCos
}

// PackedAngleCos encodes both cone cosines in one float: the
// integer part is the inner cosine times 1000, the fraction is
// the outer cosine.
func (s *Spot) PackedAngleCos() float32 {
	innerCos := math32.Cos(s.InnerAngle)
	return float32(int(innerCos*1000)) + s.OuterAngleCos()
}
