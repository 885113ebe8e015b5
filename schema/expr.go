package schema

// State is a read-only view of the values known at some point of a
// decode, encode or update pass: temp bindings, fields already
// processed in the current record, and those of enclosing records.
type State interface {
	// Uint returns the named integer as an unsigned bit pattern.
	Uint(name string) (uint64, bool)
	// Int returns the named integer as a signed value.
	Int(name string) (int64, bool)
	// Len returns the length of the named list, or 1 or 0 for the
	// presence of the named group.
	Len(name string) (int, bool)
}

// Mutable is a State whose stored fields can be rewritten.
type Mutable interface {
	State
	SetUint(name string, v uint64) error
	SetInt(name string, v int64) error
}

// Predicate decides control flow from known state.
type Predicate func(State) bool

// Expr computes an integer from known state.
type Expr func(State) int64

// FixupFunc adjusts element index of a list of count elements after
// mutation.
type FixupFunc func(elem Mutable, index, count int) error

// Value returns the named integer, or 0 when it is unknown.
func Value(s State, name string) int64 {
	v, _ := s.Int(name)
	return v
}

// Len returns the named list length, or 0 when it is unknown.
func Len(s State, name string) int {
	n, _ := s.Len(name)
	return n
}

// Bool converts b to 1 or 0.
func Bool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Equals returns a predicate true when the named integer equals v.
func Equals(name string, v int64) Predicate {
	return func(s State) bool {
		got, ok := s.Int(name)
		return ok && got == v
	}
}

// NotEquals returns a predicate true when the named integer is known and
// differs from v.
func NotEquals(name string, v int64) Predicate {
	return func(s State) bool {
		got, ok := s.Int(name)
		return ok && got != v
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(s State) bool { return !p(s) }
}

// Const returns an expression yielding v.
func Const(v int64) Expr {
	return func(State) int64 { return v }
}

// Ref returns an expression yielding the named integer.
func Ref(name string) Expr {
	return func(s State) int64 { return Value(s, name) }
}

// LenOf returns an expression yielding the named list length.
func LenOf(name string) Expr {
	return func(s State) int64 { return int64(Len(s, name)) }
}

// NonEmpty returns an expression yielding 1 when the named list has
// elements and 0 otherwise.
func NonEmpty(name string) Expr {
	return func(s State) int64 { return Bool(Len(s, name) > 0) }
}
