package schema

import "github.com/mkch/bitrec/bitio"

// Entry is one element of a Schema: *Field, *Group or *Repeat.
type Entry interface {
	EntryName() string
	// Guard returns the presence predicate, nil when always present.
	Guard() Predicate
	clone() Entry
}

// Role tells what a Field contributes to the record.
type Role uint8

const (
	// Stored fields are kept in the record.
	Stored Role = iota
	// Temp fields occupy bits but are only bound for later predicates;
	// encoding recomputes them from Value.
	Temp
	// Magic fields must hold Const.
	Magic
	// Pad fields are skipped on decode and written as zeros.
	Pad
)

func (r Role) String() string {
	switch r {
	case Stored:
		return "stored"
	case Temp:
		return "temp"
	case Magic:
		return "magic"
	case Pad:
		return "pad"
	}
	return "unknown"
}

// Field is an integer entry.
type Field struct {
	Name      string
	Width     int
	Signed    bool
	ByteOrder bitio.ByteOrder // Zero inherits from the schema.
	BitOrder  bitio.BitOrder  // Zero inherits from the schema.
	Role      Role
	Const     uint64 // Magic only: the required bit pattern.

	When       Predicate
	Default    int64 // Value taken when When is false.
	HasDefault bool

	Value  Expr // Temp only: recomputes the field when encoding.
	Update Expr // Stored only: rewritten into the record by the updater.
}

// Uint returns a stored unsigned field.
func Uint(name string, width int) *Field {
	return &Field{Name: name, Width: width}
}

// Int returns a stored signed field.
func Int(name string, width int) *Field {
	return &Field{Name: name, Width: width, Signed: true}
}

// Constant returns a magic field that must hold v. The name may be empty.
func Constant(name string, width int, v uint64) *Field {
	return &Field{Name: name, Width: width, Role: Magic, Const: v}
}

// Padding returns width bits of reserved space.
func Padding(width int) *Field {
	return &Field{Width: width, Role: Pad}
}

// Order overrides the schema byte and bit order for this field.
func (f *Field) Order(byteOrder bitio.ByteOrder, bitOrder bitio.BitOrder) *Field {
	f.ByteOrder, f.BitOrder = byteOrder, bitOrder
	return f
}

// Computed turns f into a temp field whose encoded value is e.
func (f *Field) Computed(e Expr) *Field {
	f.Role, f.Value = Temp, e
	return f
}

// Derived makes the updater rewrite f with e.
func (f *Field) Derived(e Expr) *Field {
	f.Update = e
	return f
}

// If guards f with p; def is used when p is false.
func (f *Field) If(p Predicate, def int64) *Field {
	f.When, f.Default, f.HasDefault = p, def, true
	return f
}

func (f *Field) EntryName() string { return f.Name }
func (f *Field) Guard() Predicate  { return f.When }

func (f *Field) clone() Entry {
	c := *f
	return &c
}

// Group is a nested record entry.
type Group struct {
	Name   string
	Schema *Schema
	When   Predicate // When false the group is absent (nil).
}

// GroupOf returns a group entry of schema s.
func GroupOf(name string, s *Schema) *Group {
	return &Group{Name: name, Schema: s}
}

// If guards g with p.
func (g *Group) If(p Predicate) *Group {
	g.When = p
	return g
}

func (g *Group) EntryName() string { return g.Name }
func (g *Group) Guard() Predicate  { return g.When }

func (g *Group) clone() Entry {
	c := *g
	return &c
}

// Continuation names the element field that marks whether more elements
// follow, and the values it takes.
type Continuation struct {
	Field string
	More  uint64
	Last  uint64
}

// Repeat is a list entry.
type Repeat struct {
	Name    string
	Element *Schema

	// Until is evaluated on each decoded element; the first true ends
	// the list, that element included.
	Until Predicate
	// Count, evaluated before the first element, fixes the list length.
	// Exactly one of Until and Count is set.
	Count Expr
	// Max bounds the number of elements decoded; zero means no bound.
	Max int

	When Predicate // When false the list is empty.

	Continuation *Continuation
	Fixup        FixupFunc
}

// RepeatOf returns a list entry of element schema elem.
func RepeatOf(name string, elem *Schema) *Repeat {
	return &Repeat{Name: name, Element: elem}
}

// StopWhen sets the termination predicate.
func (r *Repeat) StopWhen(p Predicate) *Repeat {
	r.Until = p
	return r
}

// Times sets the count expression.
func (r *Repeat) Times(e Expr) *Repeat {
	r.Count = e
	return r
}

// Limit bounds the decoded length.
func (r *Repeat) Limit(n int) *Repeat {
	r.Max = n
	return r
}

// If guards r with p.
func (r *Repeat) If(p Predicate) *Repeat {
	r.When = p
	return r
}

// Marker declares the element continuation field.
func (r *Repeat) Marker(field string, more, last uint64) *Repeat {
	r.Continuation = &Continuation{Field: field, More: more, Last: last}
	return r
}

// OnUpdate registers a per-element fixup run by the updater.
func (r *Repeat) OnUpdate(fn FixupFunc) *Repeat {
	r.Fixup = fn
	return r
}

func (r *Repeat) EntryName() string { return r.Name }
func (r *Repeat) Guard() Predicate  { return r.When }

func (r *Repeat) clone() Entry {
	c := *r
	if r.Continuation != nil {
		cont := *r.Continuation
		c.Continuation = &cont
	}
	return &c
}
