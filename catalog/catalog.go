// Package catalog provides ready-made schemas for the kinds of data items
// found in surveillance data exchange formats: fixed-length items,
// extended items continued octet by octet, explicit-length items,
// repetitive items, and compound items whose subfields are announced by
// a presence octet.
package catalog

import (
	"sort"

	"github.com/mkch/bitrec/schema"
)

// Fixed is a fixed-length item: a 5-bit unsigned value, a 9-bit signed
// value and an 18-bit signed fixed-point value (see Fix18LSB).
var Fixed = schema.Must(schema.New("Fixed",
	schema.Uint("uint5", 5),
	schema.Int("sint9", 9),
	schema.Int("fix18", 18),
))

// Fix18LSB is the value of one unit of Fixed's fix18 field.
const Fix18LSB = 0.01

// Extension is one continuation part of an Extended item. fx is 1 when
// another part follows.
var Extension = schema.Must(schema.New("Extension",
	schema.Uint("a", 4),
	schema.Int("b", 8),
	schema.Uint("c", 3),
	schema.Uint("fx", 1),
))

// Extended is a 7-bit head followed by an FX bit announcing the
// extensions. The FX bit is not stored; encoding derives it from whether
// ext has elements.
var Extended = schema.Must(schema.New("Extended",
	schema.Uint("head", 7),
	schema.Uint("fx", 1).Computed(schema.NonEmpty("ext")),
	schema.RepeatOf("ext", Extension).
		If(schema.Equals("fx", 1)).
		Marker("fx", 1, 0),
))

// Octet is one element of ExplicitLength.
var Octet = schema.Must(schema.New("Octet",
	schema.Uint("v", 8),
))

// ExplicitLength opens with a length octet counting itself and the octets
// after it. codec.Update derives len from the octets list.
var ExplicitLength = schema.Must(schema.New("ExplicitLength",
	schema.Uint("len", 8).Derived(func(s schema.State) int64 {
		return int64(schema.Len(s, "octets")) + 1
	}),
	schema.RepeatOf("octets", Octet).Times(func(s schema.State) int64 {
		return schema.Value(s, "len") - 1
	}),
))

// Position, Velocity and TrackNumber are subfields of Compound.
var (
	Position = schema.Must(schema.New("Position",
		schema.Int("x", 16),
		schema.Int("y", 16),
	))
	Velocity = schema.Must(schema.New("Velocity",
		schema.Int("vx", 12),
		schema.Int("vy", 12),
	))
	TrackNumber = schema.Must(schema.New("TrackNumber",
		schema.Padding(4),
		schema.Uint("number", 12),
	))
)

// Compound starts with a presence octet telling which subfields follow.
// The presence bits and the track count are derived by codec.Update.
var Compound = schema.Must(schema.New("Compound",
	schema.Uint("sf1", 1).Derived(schema.NonEmpty("position")),
	schema.Uint("sf2", 1).Derived(schema.NonEmpty("velocity")),
	schema.Uint("sf3", 1).Derived(schema.NonEmpty("tracks")),
	schema.Padding(4),
	schema.Constant("fx", 1, 0),
	schema.GroupOf("position", Position).If(schema.Equals("sf1", 1)),
	schema.GroupOf("velocity", Velocity).If(schema.Equals("sf2", 1)),
	schema.Uint("rep", 8).If(schema.Equals("sf3", 1), 0).Derived(schema.LenOf("tracks")),
	schema.RepeatOf("tracks", TrackNumber).
		If(schema.Equals("sf3", 1)).
		Times(schema.Ref("rep")),
))

// Repetitive is a repetition factor octet followed by that many track
// numbers.
var Repetitive = schema.Must(schema.New("Repetitive",
	schema.Uint("rep", 8).Derived(schema.LenOf("items")),
	schema.RepeatOf("items", TrackNumber).Times(schema.Ref("rep")),
))

var builtin = map[string]*schema.Schema{
	"fixed":      Fixed,
	"extended":   Extended,
	"explicit":   ExplicitLength,
	"repetitive": Repetitive,
	"compound":   Compound,
}

// Lookup returns a catalog schema by its lower-case name.
func Lookup(name string) (*schema.Schema, bool) {
	s, ok := builtin[name]
	return s, ok
}

// Names returns the names accepted by Lookup, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
