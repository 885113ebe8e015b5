// Package record holds decoded values of a schema.
//
// A Record has one slot per member of its schema: integers for stored
// fields, a nested *Record for groups (nil when absent) and a *List for
// repeats. Temp, magic and pad fields have no slot; they exist only while
// a codec pass runs.
//
// Mutating lists leaves continuation markers and derived fields stale
// until codec.Update runs.
package record

import (
	"errors"
	"fmt"

	"github.com/mkch/bitrec/schema"
)

var (
	// ErrNoField reports a name that is not a member of the schema.
	ErrNoField = errors.New("no such field")
	// ErrKind reports an access that does not match the member's kind.
	ErrKind = errors.New("wrong kind")
	// ErrIndex reports a list index out of range.
	ErrIndex = errors.New("index out of range")
)

type slot struct {
	bits uint64  // Integers; signed values are stored two's-complement.
	rec  *Record // Groups.
	list *List   // Repeats.
}

// Record is an instance of a schema.
type Record struct {
	schema *schema.Schema
	slots  []slot
}

// New returns a record of s holding zero values and declared defaults.
// Unguarded groups are populated recursively; guarded groups are absent.
func New(s *schema.Schema) *Record {
	r := &Record{schema: s, slots: make([]slot, s.NumMembers())}
	for i := range r.slots {
		switch e := s.Member(i).(type) {
		case *schema.Field:
			if e.HasDefault {
				r.slots[i].bits = uint64(e.Default)
			}
		case *schema.Group:
			if e.When == nil {
				r.slots[i].rec = New(e.Schema)
			}
		case *schema.Repeat:
			r.slots[i].list = newList(e.Element)
		}
	}
	return r
}

// Schema returns the record's schema.
func (r *Record) Schema() *schema.Schema {
	return r.schema
}

func (r *Record) member(name string) (int, schema.Entry, error) {
	i := r.schema.MemberIndex(name)
	if i < 0 {
		return -1, nil, fmt.Errorf("%w: %s.%s", ErrNoField, r.schema.Name(), name)
	}
	return i, r.schema.Member(i), nil
}

func (r *Record) field(name string) (int, *schema.Field, error) {
	i, e, err := r.member(name)
	if err != nil {
		return -1, nil, err
	}
	f, ok := e.(*schema.Field)
	if !ok {
		return -1, nil, fmt.Errorf("%w: %s.%s is not an integer", ErrKind, r.schema.Name(), name)
	}
	return i, f, nil
}

// Uint returns the named integer as an unsigned bit pattern. Signed
// fields yield their two's-complement representation; groups and lists
// are not integers.
func (r *Record) Uint(name string) (uint64, bool) {
	i, _, err := r.field(name)
	if err != nil {
		return 0, false
	}
	return r.slots[i].bits, true
}

// Int returns the named integer as a signed value.
func (r *Record) Int(name string) (int64, bool) {
	i, _, err := r.field(name)
	if err != nil {
		return 0, false
	}
	return int64(r.slots[i].bits), true
}

// Len returns the length of the named list, or the presence (1 or 0) of
// the named group.
func (r *Record) Len(name string) (int, bool) {
	i, e, err := r.member(name)
	if err != nil {
		return 0, false
	}
	switch e.(type) {
	case *schema.Repeat:
		return r.slots[i].list.Len(), true
	case *schema.Group:
		if r.slots[i].rec != nil {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// SetUint sets an unsigned field. The value is not checked against the
// field width; encoding reports values that do not fit.
func (r *Record) SetUint(name string, v uint64) error {
	i, f, err := r.field(name)
	if err != nil {
		return err
	}
	if f.Signed {
		return fmt.Errorf("%w: %s.%s is signed", ErrKind, r.schema.Name(), name)
	}
	r.slots[i].bits = v
	return nil
}

// SetInt sets a signed field, or an unsigned field to a non-negative value.
func (r *Record) SetInt(name string, v int64) error {
	i, f, err := r.field(name)
	if err != nil {
		return err
	}
	if !f.Signed && v < 0 {
		return fmt.Errorf("%w: negative value %d for unsigned %s.%s", ErrKind, v, r.schema.Name(), name)
	}
	r.slots[i].bits = uint64(v)
	return nil
}

// Group returns the named nested record; nil when absent.
func (r *Record) Group(name string) (*Record, error) {
	i, e, err := r.member(name)
	if err != nil {
		return nil, err
	}
	if _, ok := e.(*schema.Group); !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a group", ErrKind, r.schema.Name(), name)
	}
	return r.slots[i].rec, nil
}

// SetGroup replaces the named nested record. A nil sub marks the group
// absent.
func (r *Record) SetGroup(name string, sub *Record) error {
	i, e, err := r.member(name)
	if err != nil {
		return err
	}
	g, ok := e.(*schema.Group)
	if !ok {
		return fmt.Errorf("%w: %s.%s is not a group", ErrKind, r.schema.Name(), name)
	}
	if sub != nil && sub.schema != g.Schema {
		return fmt.Errorf("%w: %s.%s wants %s, got %s", ErrKind, r.schema.Name(), name, g.Schema.Name(), sub.schema.Name())
	}
	r.slots[i].rec = sub
	return nil
}

// List returns the named list.
func (r *Record) List(name string) (*List, error) {
	i, e, err := r.member(name)
	if err != nil {
		return nil, err
	}
	if _, ok := e.(*schema.Repeat); !ok {
		return nil, fmt.Errorf("%w: %s.%s is not a list", ErrKind, r.schema.Name(), name)
	}
	return r.slots[i].list, nil
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := &Record{schema: r.schema, slots: make([]slot, len(r.slots))}
	for i, s := range r.slots {
		c.slots[i].bits = s.bits
		if s.rec != nil {
			c.slots[i].rec = s.rec.Clone()
		}
		if s.list != nil {
			c.slots[i].list = s.list.clone()
		}
	}
	return c
}

// Equal reports whether r and o have the same schema and values.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.schema != o.schema || len(r.slots) != len(o.slots) {
		return false
	}
	for i := range r.slots {
		a, b := r.slots[i], o.slots[i]
		if a.bits != b.bits || !a.rec.Equal(b.rec) {
			return false
		}
		if (a.list == nil) != (b.list == nil) {
			return false
		}
		if a.list != nil && !a.list.equal(b.list) {
			return false
		}
	}
	return true
}
