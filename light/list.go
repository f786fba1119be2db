package light

import "matengine/core"

// List is an ordered collection of lights.
type List struct {
	lights []Light
}

// NewList returns a list holding the given lights in order.
func NewList(lights ...Light) List {
	return List{lights: append([]Light(nil), lights...)}
}

func (l *List) Add(lt Light) {
	l.lights = append(l.lights, lt)
}

// Remove drops the first occurrence of lt and reports whether it was present.
func (l *List) Remove(lt Light) bool {
	for i, x := range l.lights {
		if x == lt {
			l.lights = append(l.lights[:i], l.lights[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List) Len() int        { return len(l.lights) }
func (l *List) At(i int) Light  { return l.lights[i] }
func (l *List) Lights() []Light { return l.lights }
func (l *List) Clone() List     { return NewList(l.lights...) }

// AmbientColor sums the colors of all ambient lights. Alpha is always 1.
func (l *List) AmbientColor() core.Color {
	c := core.Color{A: 1}
	for _, lt := range l.lights {
		if lt.Type() == TypeAmbient {
			lc := lt.Color()
			c.R += lc.R
			c.G += lc.G
			c.B += lc.B
		}
	}
	return c
}
