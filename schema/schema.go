package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkch/bitrec/bitio"
)

// ErrMalformed is wrapped by every schema construction error.
var ErrMalformed = errors.New("malformed schema")

// SpecError reports an invalid schema definition.
type SpecError struct {
	Schema string
	Entry  string
	msg    string
}

func (e *SpecError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("schema %s: %s", e.Schema, e.msg)
	}
	return fmt.Sprintf("schema %s.%s: %s", e.Schema, e.Entry, e.msg)
}

func (e *SpecError) Unwrap() error {
	return ErrMalformed
}

func specErrorf(schema, entry string, format string, a ...interface{}) *SpecError {
	return &SpecError{Schema: schema, Entry: entry, msg: fmt.Sprintf(format, a...)}
}

// Schema is an immutable record layout.
type Schema struct {
	name      string
	entries   []Entry
	byteOrder bitio.ByteOrder
	bitOrder  bitio.BitOrder

	members []Entry        // Entries retained in a record, in order.
	index   map[string]int // Member name -> position in members.
	named   map[string]Entry
}

// New validates entries and builds a Schema. Entries are copied; changing
// them afterwards does not affect the Schema.
func New(name string, entries ...Entry) (*Schema, error) {
	if name == "" {
		return nil, specErrorf("?", "", "empty schema name")
	}
	s := &Schema{
		name:  name,
		index: make(map[string]int),
		named: make(map[string]Entry),
	}
	for i, e := range entries {
		if e == nil {
			return nil, specErrorf(name, "", "nil entry #%d", i)
		}
		e = e.clone()
		if err := s.check(e); err != nil {
			return nil, err
		}
		if n := e.EntryName(); n != "" {
			if _, dup := s.named[n]; dup {
				return nil, specErrorf(name, n, "duplicated name")
			}
			s.named[n] = e
		}
		if isMember(e) {
			s.index[e.EntryName()] = len(s.members)
			s.members = append(s.members, e)
		}
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// Must panics if err is not nil. It is meant for schemas written in Go
// source, where a malformed schema is a programming error.
func Must(s *Schema, err error) *Schema {
	if err != nil {
		panic(err)
	}
	return s
}

// WithOrder returns a copy of s whose entries default to the given
// orders. Zero arguments inherit from the enclosing schema or cursor.
func (s *Schema) WithOrder(byteOrder bitio.ByteOrder, bitOrder bitio.BitOrder) *Schema {
	c := *s
	c.byteOrder, c.bitOrder = byteOrder, bitOrder
	return &c
}

func (s *Schema) Name() string               { return s.name }
func (s *Schema) ByteOrder() bitio.ByteOrder { return s.byteOrder }
func (s *Schema) BitOrder() bitio.BitOrder   { return s.bitOrder }

// Len returns the number of entries.
func (s *Schema) Len() int { return len(s.entries) }

// Entry returns entry i.
func (s *Schema) Entry(i int) Entry { return s.entries[i] }

// NumMembers returns the number of entries a record holds a slot for:
// stored fields, groups and repeats.
func (s *Schema) NumMembers() int { return len(s.members) }

// Member returns member i.
func (s *Schema) Member(i int) Entry { return s.members[i] }

// Entries returns a copy of the entry list.
func (s *Schema) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// MemberIndex returns the record slot of the named member, or -1.
func (s *Schema) MemberIndex(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Lookup returns the named entry, including temp and magic fields.
func (s *Schema) Lookup(name string) (Entry, bool) {
	e, ok := s.named[name]
	return e, ok
}

// isMember reports whether e owns a slot in a record.
func isMember(e Entry) bool {
	if f, ok := e.(*Field); ok {
		return f.Role == Stored
	}
	return true
}

func (s *Schema) check(e Entry) error {
	switch e := e.(type) {
	case *Field:
		return s.checkField(e)
	case *Group:
		if e.Name == "" {
			return specErrorf(s.name, "", "unnamed group")
		}
		if e.Schema == nil {
			return specErrorf(s.name, e.Name, "group without schema")
		}
	case *Repeat:
		return s.checkRepeat(e)
	default:
		return specErrorf(s.name, "", "unsupported entry %T", e)
	}
	return nil
}

func (s *Schema) checkField(f *Field) error {
	if f.Width < 1 || f.Width > bitio.MaxWidth {
		return specErrorf(s.name, f.Name, "width %d out of 1..%d", f.Width, bitio.MaxWidth)
	}
	if f.Name == "" && (f.Role == Stored || f.Role == Temp) {
		return specErrorf(s.name, "", "unnamed %s field", f.Role)
	}
	if f.Value != nil && f.Role != Temp {
		return specErrorf(s.name, f.Name, "value expression on %s field", f.Role)
	}
	if f.Update != nil && f.Role != Stored {
		return specErrorf(s.name, f.Name, "update expression on %s field", f.Role)
	}
	switch f.Role {
	case Stored:
	case Temp:
		if f.Value == nil {
			return specErrorf(s.name, f.Name, "temp field without value expression")
		}
	case Magic:
		if f.Signed {
			return specErrorf(s.name, f.Name, "signed magic field")
		}
		if !bitio.FitsUint(f.Const, f.Width) {
			return specErrorf(s.name, f.Name, "magic value %#x does not fit %d bits", f.Const, f.Width)
		}
	case Pad:
	default:
		return specErrorf(s.name, f.Name, "unknown role %d", f.Role)
	}
	if f.When != nil && (f.Role == Stored || f.Role == Temp) && !f.HasDefault {
		return specErrorf(s.name, f.Name, "conditional field without default")
	}
	if f.HasDefault && !fits(f.Default, f.Width, f.Signed) {
		return specErrorf(s.name, f.Name, "default %d does not fit %d bits", f.Default, f.Width)
	}
	return nil
}

func (s *Schema) checkRepeat(r *Repeat) error {
	if r.Name == "" {
		return specErrorf(s.name, "", "unnamed repeat")
	}
	if r.Element == nil {
		return specErrorf(s.name, r.Name, "repeat without element schema")
	}
	if r.Max < 0 {
		return specErrorf(s.name, r.Name, "negative limit %d", r.Max)
	}
	if c := r.Continuation; c != nil {
		e, ok := r.Element.named[c.Field]
		f, isField := e.(*Field)
		if !ok || !isField || f.Role != Stored {
			return specErrorf(s.name, r.Name, "continuation field %q is not a stored field of %s", c.Field, r.Element.name)
		}
		if !bitio.FitsUint(c.More, f.Width) || !bitio.FitsUint(c.Last, f.Width) {
			return specErrorf(s.name, r.Name, "continuation values do not fit %s.%s", r.Element.name, c.Field)
		}
		if c.More == c.Last {
			return specErrorf(s.name, r.Name, "continuation values are equal")
		}
		if r.Until == nil && r.Count == nil {
			r.Until = lastMarker(c.Field, c.Last, f.Signed, f.Width)
		}
	}
	if (r.Until == nil) == (r.Count == nil) {
		return specErrorf(s.name, r.Name, "repeat needs exactly one of until and count")
	}
	return nil
}

func lastMarker(field string, last uint64, signed bool, width int) Predicate {
	if signed {
		return Equals(field, bitio.SignExtend(last, width))
	}
	return func(s State) bool {
		v, ok := s.Uint(field)
		return ok && v == last
	}
}

func fits(v int64, width int, signed bool) bool {
	if signed {
		return bitio.FitsInt(v, width)
	}
	return v >= 0 && bitio.FitsUint(uint64(v), width)
}

// String describes the layout, nested schemas included.
func (s *Schema) String() string {
	var b strings.Builder
	s.describe(&b, 0)
	return b.String()
}

func (s *Schema) describe(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s byte_order=%v bit_order=%v\n", indent, s.name, s.byteOrder, s.bitOrder)
	indent += "  "
	for _, e := range s.entries {
		switch e := e.(type) {
		case *Field:
			kind := "u"
			if e.Signed {
				kind = "i"
			}
			fmt.Fprintf(b, "%s%s %s %s%d", indent, e.Role, nameOr(e.Name, "-"), kind, e.Width)
			if e.ByteOrder != bitio.DefaultByteOrder || e.BitOrder != bitio.DefaultBitOrder {
				fmt.Fprintf(b, " order=%v/%v", e.ByteOrder, e.BitOrder)
			}
			if e.Role == Magic {
				fmt.Fprintf(b, " const=%#x", e.Const)
			}
			if e.When != nil {
				fmt.Fprintf(b, " when default=%d", e.Default)
			}
			if e.Update != nil {
				b.WriteString(" derived")
			}
			b.WriteByte('\n')
		case *Group:
			fmt.Fprintf(b, "%sgroup %s", indent, e.Name)
			if e.When != nil {
				b.WriteString(" when")
			}
			b.WriteByte('\n')
			e.Schema.describe(b, depth+2)
		case *Repeat:
			fmt.Fprintf(b, "%srepeat %s", indent, e.Name)
			if e.When != nil {
				b.WriteString(" when")
			}
			if e.Count != nil {
				b.WriteString(" count")
			} else {
				b.WriteString(" until")
			}
			if e.Max > 0 {
				fmt.Fprintf(b, " max=%d", e.Max)
			}
			if c := e.Continuation; c != nil {
				fmt.Fprintf(b, " marker=%s(%d/%d)", c.Field, c.More, c.Last)
			}
			b.WriteByte('\n')
			e.Element.describe(b, depth+2)
		}
	}
}

func nameOr(name, alt string) string {
	if name == "" {
		return alt
	}
	return name
}
