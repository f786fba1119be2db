// Package export implements the binary capsule format materials,
// technique definitions and render states are saved in. A capsule is a
// set of named, typed fields; writers omit fields equal to their
// default so readers fall back to the same default.
package export

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
)

// FormatVersion is written into every encoded capsule.
const FormatVersion = 1

var ErrBadFormat = errors.New("export: bad capsule format")

// Savable is implemented by types that persist themselves into capsules.
type Savable interface {
	Write(oc *OutputCapsule) error
}

// Loadable is implemented by types that restore themselves from a
// capsule without outside help.
type Loadable interface {
	Read(ic *InputCapsule) error
}

type fieldKind uint8

const (
	kindBool fieldKind = iota + 1
	kindInt
	kindFloat
	kindString
	kindFloats
	kindStrings
	kindCapsule
	kindCapsuleList
)

// field is the encoded form of one named value. Only the member
// matching Kind is meaningful.
type field struct {
	Kind     fieldKind
	Bool     bool
	Int      int64
	Float    float32
	String   string
	Floats   []float32
	Strings  []string
	Capsule  *record
	Capsules []*record
}

type record struct {
	Fields map[string]field
}

func newRecord() *record { return &record{Fields: make(map[string]field)} }

type envelope struct {
	Version int
	Root    *record
}

// ── Output ────────────────────────────────────────────────────────────────────

// OutputCapsule collects the fields of one Savable.
type OutputCapsule struct {
	rec *record
}

func NewOutputCapsule() *OutputCapsule {
	return &OutputCapsule{rec: newRecord()}
}

func (oc *OutputCapsule) WriteBool(name string, v, def bool) {
	if v != def {
		oc.rec.Fields[name] = field{Kind: kindBool, Bool: v}
	}
}

func (oc *OutputCapsule) WriteInt(name string, v, def int) {
	if v != def {
		oc.rec.Fields[name] = field{Kind: kindInt, Int: int64(v)}
	}
}

func (oc *OutputCapsule) WriteFloat(name string, v, def float32) {
	if v != def {
		oc.rec.Fields[name] = field{Kind: kindFloat, Float: v}
	}
}

func (oc *OutputCapsule) WriteString(name, v, def string) {
	if v != def {
		oc.rec.Fields[name] = field{Kind: kindString, String: v}
	}
}

// WriteFloats stores v unless it is empty.
func (oc *OutputCapsule) WriteFloats(name string, v []float32) {
	if len(v) > 0 {
		oc.rec.Fields[name] = field{Kind: kindFloats, Floats: append([]float32(nil), v...)}
	}
}

// WriteStrings stores v unless it is empty.
func (oc *OutputCapsule) WriteStrings(name string, v []string) {
	if len(v) > 0 {
		oc.rec.Fields[name] = field{Kind: kindStrings, Strings: append([]string(nil), v...)}
	}
}

// WriteSavable stores s as a nested capsule. A nil s is omitted.
func (oc *OutputCapsule) WriteSavable(name string, s Savable) error {
	if s == nil {
		return nil
	}
	sub := NewOutputCapsule()
	if err := s.Write(sub); err != nil {
		return fmt.Errorf("export: write %q: %w", name, err)
	}
	oc.rec.Fields[name] = field{Kind: kindCapsule, Capsule: sub.rec}
	return nil
}

// WriteSavableList stores items as a list of nested capsules.
func WriteSavableList[T Savable](oc *OutputCapsule, name string, items []T) error {
	if len(items) == 0 {
		return nil
	}
	recs := make([]*record, 0, len(items))
	for i, s := range items {
		sub := NewOutputCapsule()
		if err := s.Write(sub); err != nil {
			return fmt.Errorf("export: write %q[%d]: %w", name, i, err)
		}
		recs = append(recs, sub.rec)
	}
	oc.rec.Fields[name] = field{Kind: kindCapsuleList, Capsules: recs}
	return nil
}

// ── Input ─────────────────────────────────────────────────────────────────────

// InputCapsule reads the fields of one Savable. Missing fields and
// fields of another type read as the supplied default.
type InputCapsule struct {
	rec *record
}

func (ic *InputCapsule) get(name string, kind fieldKind) (field, bool) {
	if ic == nil || ic.rec == nil {
		return field{}, false
	}
	f, ok := ic.rec.Fields[name]
	if !ok || f.Kind != kind {
		return field{}, false
	}
	return f, true
}

// Has reports whether name was written.
func (ic *InputCapsule) Has(name string) bool {
	if ic == nil || ic.rec == nil {
		return false
	}
	_, ok := ic.rec.Fields[name]
	return ok
}

func (ic *InputCapsule) ReadBool(name string, def bool) bool {
	if f, ok := ic.get(name, kindBool); ok {
		return f.Bool
	}
	return def
}

func (ic *InputCapsule) ReadInt(name string, def int) int {
	if f, ok := ic.get(name, kindInt); ok {
		return int(f.Int)
	}
	return def
}

func (ic *InputCapsule) ReadFloat(name string, def float32) float32 {
	if f, ok := ic.get(name, kindFloat); ok {
		return f.Float
	}
	return def
}

func (ic *InputCapsule) ReadString(name, def string) string {
	if f, ok := ic.get(name, kindString); ok {
		return f.String
	}
	return def
}

func (ic *InputCapsule) ReadFloats(name string) []float32 {
	f, _ := ic.get(name, kindFloats)
	return f.Floats
}

func (ic *InputCapsule) ReadStrings(name string) []string {
	f, _ := ic.get(name, kindStrings)
	return f.Strings
}

// ReadCapsule returns the nested capsule stored under name, or nil.
func (ic *InputCapsule) ReadCapsule(name string) *InputCapsule {
	f, ok := ic.get(name, kindCapsule)
	if !ok {
		return nil
	}
	return &InputCapsule{rec: f.Capsule}
}

// ReadSavable reads the nested capsule under name into s and reports
// whether it was present.
func (ic *InputCapsule) ReadSavable(name string, s Loadable) (bool, error) {
	sub := ic.ReadCapsule(name)
	if sub == nil {
		return false, nil
	}
	if err := s.Read(sub); err != nil {
		return true, fmt.Errorf("export: read %q: %w", name, err)
	}
	return true, nil
}

// ReadCapsuleList returns the nested capsules stored under name.
func (ic *InputCapsule) ReadCapsuleList(name string) []*InputCapsule {
	f, ok := ic.get(name, kindCapsuleList)
	if !ok {
		return nil
	}
	out := make([]*InputCapsule, len(f.Capsules))
	for i, r := range f.Capsules {
		out[i] = &InputCapsule{rec: r}
	}
	return out
}

// ── Encoding ──────────────────────────────────────────────────────────────────

// Encode writes s to w.
func Encode(w io.Writer, s Savable) error {
	oc := NewOutputCapsule()
	if err := s.Write(oc); err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(envelope{Version: FormatVersion, Root: oc.rec}); err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	return nil
}

// Decode reads a capsule written by Encode.
func Decode(r io.Reader) (*InputCapsule, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadFormat, env.Version)
	}
	if env.Root == nil {
		env.Root = newRecord()
	}
	return &InputCapsule{rec: env.Root}, nil
}

// DecodeInto reads a capsule from r into s.
func DecodeInto(r io.Reader, s Loadable) error {
	ic, err := Decode(r)
	if err != nil {
		return err
	}
	return s.Read(ic)
}

// Capsule returns the input view of what oc collected, so a value can
// be copied through the capsule protocol without encoding it.
func (oc *OutputCapsule) Capsule() *InputCapsule {
	return &InputCapsule{rec: oc.rec}
}
