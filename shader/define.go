package shader

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"matengine/export"
)

// DefineList is the set of preprocessor defines a shader is compiled with.
type DefineList struct {
	defines  map[string]string
	compiled string
	dirty    bool
}

func NewDefineList() *DefineList {
	return &DefineList{defines: make(map[string]string)}
}

func (dl *DefineList) init() {
	if dl.defines == nil {
		dl.defines = make(map[string]string)
	}
}

// Set updates the define name from a parameter value and reports
// whether the compiled text changed. A nil value or a false Boolean
// removes the define; Int and Float values define their textual value;
// any other kind defines "1".
func (dl *DefineList) Set(name string, v Value) bool {
	dl.init()
	if v.IsNil() || (v.kind == VarBoolean && !v.b) {
		return dl.Remove(name)
	}

	var val string
	switch v.kind {
	case VarInt, VarFloat:
		val = v.String()
	default:
		val = "1"
	}
	return dl.put(name, val)
}

// SetRaw defines name with a literal value.
func (dl *DefineList) SetRaw(name, value string) bool {
	dl.init()
	return dl.put(name, value)
}

func (dl *DefineList) put(name, val string) bool {
	if old, ok := dl.defines[name]; ok && old == val {
		return false
	}
	dl.defines[name] = val
	dl.dirty = true
	return true
}

// Remove deletes name and reports whether it was defined.
func (dl *DefineList) Remove(name string) bool {
	if _, ok := dl.defines[name]; !ok {
		return false
	}
	delete(dl.defines, name)
	dl.dirty = true
	return true
}

// Get returns the value of name and whether it is defined.
func (dl *DefineList) Get(name string) (string, bool) {
	v, ok := dl.defines[name]
	return v, ok
}

func (dl *DefineList) Len() int {
	if dl == nil {
		return 0
	}
	return len(dl.defines)
}

// Clear removes every define.
func (dl *DefineList) Clear() {
	if len(dl.defines) == 0 {
		return
	}
	clear(dl.defines)
	dl.dirty = true
}

// AddFrom copies every define of other into dl, overwriting duplicates.
func (dl *DefineList) AddFrom(other *DefineList) {
	if other == nil {
		return
	}
	dl.init()
	for k, v := range other.defines {
		dl.put(k, v)
	}
}

// Names returns the defined names in sorted order.
func (dl *DefineList) Names() []string {
	return slices.Sorted(maps.Keys(dl.defines))
}

// Compiled returns the "#define NAME VALUE" header, one line per
// define, sorted by name.
func (dl *DefineList) Compiled() string {
	if dl.dirty || (dl.compiled == "" && len(dl.defines) > 0) {
		var sb strings.Builder
		for _, name := range dl.Names() {
			sb.WriteString("#define ")
			sb.WriteString(name)
			sb.WriteByte(' ')
			sb.WriteString(dl.defines[name])
			sb.WriteByte('\n')
		}
		dl.compiled = sb.String()
		dl.dirty = false
	}
	return dl.compiled
}

// Equal reports whether dl and other compile to the same header.
func (dl *DefineList) Equal(other *DefineList) bool {
	if dl == nil || other == nil {
		return dl.Len() == other.Len()
	}
	return maps.Equal(dl.defines, other.defines)
}

func (dl *DefineList) Clone() *DefineList {
	return &DefineList{defines: maps.Clone(dl.defines), dirty: true}
}

func (dl *DefineList) Write(oc *export.OutputCapsule) error {
	names := dl.Names()
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = dl.defines[n]
	}
	oc.WriteStrings("names", names)
	oc.WriteStrings("values", values)
	return nil
}

func (dl *DefineList) Read(ic *export.InputCapsule) error {
	names, values := ic.ReadStrings("names"), ic.ReadStrings("values")
	if len(names) != len(values) {
		return fmt.Errorf("shader: define list has %d names and %d values", len(names), len(values))
	}
	dl.defines = make(map[string]string, len(names))
	for i, n := range names {
		dl.defines[n] = values[i]
	}
	dl.dirty = true
	return nil
}
