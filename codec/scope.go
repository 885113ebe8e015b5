package codec

import (
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

type binding struct {
	name string
	bits uint64
}

// scope is the State seen by predicates and expressions. It chains the
// record being processed to those enclosing it; temps bound at one level
// are visible from nested levels.
type scope struct {
	parent *scope
	rec    *record.Record
	// known counts the members of rec already processed. Members at or
	// past it are not visible yet.
	known int
	temps []binding
}

func newScope(parent *scope, rec *record.Record, known int) *scope {
	return &scope{parent: parent, rec: rec, known: known}
}

// complete returns a view of s in which every member of its record is
// visible. Temp values are computed from it when encoding.
func (s *scope) complete() *scope {
	c := *s
	c.known = s.rec.Schema().NumMembers()
	return &c
}

func (s *scope) bind(name string, bits uint64) {
	s.temps = append(s.temps, binding{name, bits})
}

func (s *scope) temp(name string) (uint64, bool) {
	for i := len(s.temps) - 1; i >= 0; i-- {
		if s.temps[i].name == name {
			return s.temps[i].bits, true
		}
	}
	return 0, false
}

func (s *scope) visible(name string) bool {
	i := s.rec.Schema().MemberIndex(name)
	return i >= 0 && i < s.known
}

func (s *scope) Uint(name string) (uint64, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.temp(name); ok {
			return v, true
		}
		if c.visible(name) {
			if v, ok := c.rec.Uint(name); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func (s *scope) Int(name string) (int64, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.temp(name); ok {
			return int64(v), true
		}
		if c.visible(name) {
			if v, ok := c.rec.Int(name); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func (s *scope) Len(name string) (int, bool) {
	for c := s; c != nil; c = c.parent {
		if c.visible(name) {
			if n, ok := c.rec.Len(name); ok {
				return n, true
			}
		}
	}
	return 0, false
}

var _ schema.State = (*scope)(nil)
