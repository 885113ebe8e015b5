package record

import (
	"fmt"

	"github.com/mkch/bitrec/schema"
)

// List is an ordered sequence of records of one element schema.
type List struct {
	elem  *schema.Schema
	items []*Record
}

func newList(elem *schema.Schema) *List {
	return &List{elem: elem}
}

// Elem returns the element schema.
func (l *List) Elem() *schema.Schema {
	return l.elem
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// At returns element i. It panics if i is out of range, like a slice.
func (l *List) At(i int) *Record {
	return l.items[i]
}

// Records returns a copy of the element slice.
func (l *List) Records() []*Record {
	return append([]*Record(nil), l.items...)
}

func (l *List) check(recs []*Record) error {
	for _, r := range recs {
		if r == nil {
			return fmt.Errorf("%w: nil element", ErrKind)
		}
		if r.schema != l.elem {
			return fmt.Errorf("%w: list of %s, got %s", ErrKind, l.elem.Name(), r.schema.Name())
		}
	}
	return nil
}

// Append adds elements at the end.
func (l *List) Append(recs ...*Record) error {
	if err := l.check(recs); err != nil {
		return err
	}
	l.items = append(l.items, recs...)
	return nil
}

// AppendNew adds a new element holding defaults and returns it.
func (l *List) AppendNew() *Record {
	r := New(l.elem)
	l.items = append(l.items, r)
	return r
}

// Insert puts rec at index i, shifting later elements up.
func (l *List) Insert(i int, rec *Record) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndex, i, len(l.items))
	}
	if err := l.check([]*Record{rec}); err != nil {
		return err
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = rec
	return nil
}

// Remove deletes element i.
func (l *List) Remove(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: remove %d of %d", ErrIndex, i, len(l.items))
	}
	copy(l.items[i:], l.items[i+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return nil
}

// Move relocates element from to index to.
func (l *List) Move(from, to int) error {
	n := len(l.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d of %d", ErrIndex, from, to, n)
	}
	r := l.items[from]
	if from < to {
		copy(l.items[from:to], l.items[from+1:to+1])
	} else {
		copy(l.items[to+1:from+1], l.items[to:from])
	}
	l.items[to] = r
	return nil
}

// Clear removes all elements.
func (l *List) Clear() {
	l.items = nil
}

func (l *List) clone() *List {
	c := &List{elem: l.elem, items: make([]*Record, len(l.items))}
	for i, r := range l.items {
		c.items[i] = r.Clone()
	}
	return c
}

func (l *List) equal(o *List) bool {
	if l.elem != o.elem || len(l.items) != len(o.items) {
		return false
	}
	for i := range l.items {
		if !l.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}
