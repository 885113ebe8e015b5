package codec

import (
	"fmt"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

type updater struct {
	*pass
}

// record makes one update pass over rec: the lists' markers and fixups,
// then nested records, then the derived fields of rec itself. Update expressions see
// every stored member of rec and of the records enclosing it.
func (u *updater) record(rec *record.Record, parent *scope, path string) error {
	s := rec.Schema()
	sc := newScope(parent, rec, s.NumMembers())
	for i := 0; i < s.NumMembers(); i++ {
		switch e := s.Member(i).(type) {
		case *schema.Group:
			sub, err := rec.Group(e.Name)
			if err != nil {
				return u.wrap(join(path, e.Name), err)
			}
			if sub != nil {
				if err := u.record(sub, sc, join(path, e.Name)); err != nil {
					return err
				}
			}
		case *schema.Repeat:
			if err := u.repeat(e, rec, sc, join(path, e.Name)); err != nil {
				return err
			}
		}
	}
	for i := 0; i < s.NumMembers(); i++ {
		f, ok := s.Member(i).(*schema.Field)
		if !ok || f.Update == nil {
			continue
		}
		v := f.Update(sc)
		var err error
		if f.Signed {
			err = rec.SetInt(f.Name, v)
		} else if v < 0 {
			err = fmt.Errorf("%w: derived value %d for unsigned field", bitio.ErrValueOverflow, v)
		} else {
			err = rec.SetUint(f.Name, uint64(v))
		}
		if err != nil {
			return u.wrap(join(path, f.Name), err)
		}
		u.trace("derived", "path", join(path, f.Name), "value", v)
	}
	return nil
}

func (u *updater) repeat(r *schema.Repeat, rec *record.Record, sc *scope, path string) error {
	list, err := rec.List(r.Name)
	if err != nil {
		return u.wrap(path, err)
	}
	n := list.Len()
	// Markers and fixups go first so element update expressions see them.
	if c := r.Continuation; c != nil {
		for i := 0; i < n; i++ {
			v := c.More
			if i == n-1 {
				v = c.Last
			}
			if err := setMarker(list.At(i), r.Element, c.Field, v); err != nil {
				return u.wrap(join(index(path, i), c.Field), err)
			}
		}
	}
	if r.Fixup != nil {
		for i := 0; i < n; i++ {
			if err := r.Fixup(list.At(i), i, n); err != nil {
				return u.wrap(index(path, i), err)
			}
		}
	}
	for i := 0; i < n; i++ {
		if err := u.record(list.At(i), sc, index(path, i)); err != nil {
			return err
		}
	}
	u.trace("repeat", "path", path, "len", n)
	return nil
}

// passLimit bounds the passes Update makes before giving up on derived
// values that keep changing. Each pass settles at least one more link of
// a dependency chain, and a chain cannot be longer than the entries of
// the schema tree.
func passLimit(s *schema.Schema) int {
	n := s.Len()
	for i := 0; i < s.Len(); i++ {
		switch e := s.Entry(i).(type) {
		case *schema.Group:
			n += passLimit(e.Schema)
		case *schema.Repeat:
			n += passLimit(e.Element)
		}
	}
	return n
}

func setMarker(el *record.Record, elem *schema.Schema, name string, v uint64) error {
	e, _ := elem.Lookup(name)
	if f := e.(*schema.Field); f.Signed {
		return el.SetInt(name, bitio.SignExtend(v, f.Width))
	}
	return el.SetUint(name, v)
}
