package codec

import (
	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

type encoder struct {
	*pass
	w *bitio.Writer
}

func (e *encoder) record(rec *record.Record, parent *scope, o orders, path string) error {
	s := rec.Schema()
	o = o.inherit(s)
	sc := newScope(parent, rec, 0)
	for i := 0; i < s.Len(); i++ {
		var err error
		switch ent := s.Entry(i).(type) {
		case *schema.Field:
			err = e.field(ent, rec, sc, o, path)
		case *schema.Group:
			err = e.group(ent, rec, sc, o, path)
		case *schema.Repeat:
			err = e.repeat(ent, rec, sc, o, path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) field(f *schema.Field, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, nameOr(f))
	ok := present(f, sc)
	fo := o.of(f)

	var bits uint64
	switch f.Role {
	case schema.Stored:
		bits, _ = rec.Uint(f.Name)
	case schema.Temp:
		bits = uint64(f.Default)
		if ok {
			bits = uint64(f.Value(sc.complete()))
		}
	case schema.Magic:
		bits = f.Const
	case schema.Pad:
		if ok {
			e.w.Pad(f.Width, fo.bitOrder)
			e.trace("field", "path", path, "role", f.Role, "width", f.Width)
		}
		return nil
	}

	if ok {
		var err error
		if f.Signed {
			err = e.w.WriteInt(int64(bits), f.Width, fo.byteOrder, fo.bitOrder)
		} else {
			err = e.w.WriteUint(bits, f.Width, fo.byteOrder, fo.bitOrder)
		}
		if err != nil {
			return e.wrap(path, err)
		}
		e.trace("field", "path", path, "role", f.Role, "width", f.Width, "value", bits)
	} else {
		e.trace("field absent", "path", path)
	}

	switch f.Role {
	case schema.Stored:
		sc.known++
	case schema.Temp:
		sc.bind(f.Name, bits)
	}
	return nil
}

func (e *encoder) group(g *schema.Group, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, g.Name)
	sub, err := rec.Group(g.Name)
	if err != nil {
		return e.wrap(path, err)
	}
	if present(g, sc) {
		if sub == nil {
			return e.errorf(path, "%w: group is absent but its guard holds", ErrMismatch)
		}
		e.trace("group", "path", path)
		if err := e.record(sub, sc, o, path); err != nil {
			return err
		}
	} else if sub != nil {
		return e.errorf(path, "%w: group is present but its guard is false", ErrMismatch)
	}
	sc.known++
	return nil
}

func (e *encoder) repeat(r *schema.Repeat, rec *record.Record, sc *scope, o orders, path string) error {
	path = join(path, r.Name)
	list, err := rec.List(r.Name)
	if err != nil {
		return e.wrap(path, err)
	}
	defer func() { sc.known++ }()
	if !present(r, sc) {
		if list.Len() > 0 {
			return e.errorf(path, "%w: %d elements but the guard is false", ErrMismatch, list.Len())
		}
		return nil
	}
	rp, err := newRepetition(r, sc)
	if err != nil {
		return e.wrap(path, err)
	}
	if err := rp.checkLen(list.Len()); err != nil {
		return e.wrap(path, err)
	}
	for i := 0; i < list.Len(); i++ {
		if err := e.record(list.At(i), sc, o, index(path, i)); err != nil {
			return err
		}
	}
	e.trace("repeat", "path", path, "len", list.Len())
	return nil
}
