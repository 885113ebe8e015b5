package codec

import (
	"fmt"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

type decoder struct {
	*pass
	r *bitio.Reader
}

// record decodes one record of s. The returned scope holds the record's
// temps; callers use it to evaluate list termination.
func (d *decoder) record(s *schema.Schema, parent *scope, o orders, path string) (*record.Record, *scope, error) {
	o = o.inherit(s)
	rec := record.New(s)
	sc := newScope(parent, rec, 0)
	for i := 0; i < s.Len(); i++ {
		var err error
		switch e := s.Entry(i).(type) {
		case *schema.Field:
			err = d.field(e, rec, sc, o, path)
		case *schema.Group:
			err = d.group(e, rec, sc, o, path)
		case *schema.Repeat:
			err = d.repeat(e, rec, sc, o, path)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return rec, sc, nil
}

func (d *decoder) field(f *schema.Field, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, nameOr(f))
	bits := uint64(f.Default)
	if present(f, sc) {
		fo := o.of(f)
		var err error
		if f.Role == schema.Pad {
			err = d.r.Skip(f.Width)
		} else if f.Signed {
			var v int64
			v, err = d.r.ReadInt(f.Width, fo.byteOrder, fo.bitOrder)
			bits = uint64(v)
		} else {
			bits, err = d.r.ReadUint(f.Width, fo.byteOrder, fo.bitOrder)
		}
		if err != nil {
			return d.wrap(path, err)
		}
		d.trace("field", "path", path, "role", f.Role, "width", f.Width, "value", bits)
	} else {
		d.trace("field absent", "path", path, "default", f.Default)
	}

	switch f.Role {
	case schema.Stored:
		var err error
		if f.Signed {
			err = rec.SetInt(f.Name, int64(bits))
		} else {
			err = rec.SetUint(f.Name, bits)
		}
		if err != nil {
			return d.wrap(path, err)
		}
		sc.known++
	case schema.Temp:
		sc.bind(f.Name, bits)
	case schema.Magic:
		if present(f, sc) && bits != f.Const {
			return d.errorf(path, "%w: got %#x, want %#x", ErrMismatch, bits, f.Const)
		}
	}
	return nil
}

func (d *decoder) group(g *schema.Group, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, g.Name)
	var sub *record.Record
	if present(g, sc) {
		d.trace("group", "path", path)
		var err error
		if sub, _, err = d.record(g.Schema, sc, o, path); err != nil {
			return err
		}
	} else {
		d.trace("group absent", "path", path)
	}
	if err := rec.SetGroup(g.Name, sub); err != nil {
		return d.wrap(path, err)
	}
	sc.known++
	return nil
}

func (d *decoder) repeat(r *schema.Repeat, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, r.Name)
	list, err := rec.List(r.Name)
	if err != nil {
		return d.wrap(path, err)
	}
	defer func() { sc.known++ }()
	if !present(r, sc) {
		d.trace("repeat absent", "path", path)
		return nil
	}
	rp, err := newRepetition(r, sc)
	if err != nil {
		return d.wrap(path, err)
	}
	for rp.next() {
		elemPath := index(path, rp.n)
		el, elemScope, err := d.record(r.Element, sc, o, elemPath)
		if err != nil {
			return err
		}
		if err := list.Append(el); err != nil {
			return d.wrap(elemPath, err)
		}
		rp.done(elemScope)
	}
	d.trace("repeat", "path", path, "len", list.Len(), "state", rp.state)
	return nil
}

// nameOr names unnamed magic and pad fields in error paths.
func nameOr(f *schema.Field) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("<%s>", f.Role)
}
