package schema

import (
	"errors"
	"log"
	"testing"

	"github.com/mkch/bitrec/bitio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func element(t *testing.T) *Schema {
	t.Helper()
	s, err := New("Elem",
		Uint("a", 4),
		Int("b", 8),
		Uint("c", 3),
		Uint("more", 1),
	)
	require.NoError(t, err)
	return s
}

func TestNewMalformed(t *testing.T) {
	t.Parallel()

	elem := element(t)
	cases := []struct {
		name    string
		entries []Entry
	}{
		{"zero width", []Entry{Uint("a", 0)}},
		{"too wide", []Entry{Int("a", 65)}},
		{"duplicated", []Entry{Uint("a", 1), Uint("a", 2)}},
		{"unnamed stored", []Entry{Uint("", 3)}},
		{"temp without value", []Entry{&Field{Name: "t", Width: 1, Role: Temp}}},
		{"value on stored", []Entry{&Field{Name: "t", Width: 1, Value: Const(1)}}},
		{"update on temp", []Entry{Uint("t", 1).Computed(Const(1)).Derived(Const(1))}},
		{"conditional without default", []Entry{&Field{Name: "c", Width: 4, When: Equals("x", 1)}}},
		{"default overflow", []Entry{Uint("c", 4).If(Equals("x", 1), 16)}},
		{"negative unsigned default", []Entry{Uint("c", 4).If(Equals("x", 1), -1)}},
		{"magic overflow", []Entry{Constant("m", 3, 8)}},
		{"signed magic", []Entry{&Field{Name: "m", Width: 4, Signed: true, Role: Magic, Const: 0xF}}},
		{"group without schema", []Entry{GroupOf("g", nil)}},
		{"repeat without element", []Entry{RepeatOf("r", nil).StopWhen(Equals("more", 0))}},
		{"repeat without end", []Entry{RepeatOf("r", elem)}},
		{"repeat with both ends", []Entry{RepeatOf("r", elem).StopWhen(Equals("more", 0)).Times(Const(2))}},
		{"negative limit", []Entry{RepeatOf("r", elem).Times(Const(1)).Limit(-1)}},
		{"missing marker field", []Entry{RepeatOf("r", elem).Marker("nope", 1, 0)}},
		{"marker overflow", []Entry{RepeatOf("r", elem).Marker("more", 2, 0)}},
		{"equal marker values", []Entry{RepeatOf("r", elem).Marker("more", 1, 1)}},
		{"nil entry", []Entry{nil}},
	}
	for _, c := range cases {
		_, err := New("S", c.entries...)
		if err == nil {
			t.Fatalf("%s: Got: <nil>. Want: error", c.name)
		}
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: Got: %v. Want: ErrMalformed", c.name, err)
		}
		var se *SpecError
		require.True(t, errors.As(err, &se), c.name)
		if testing.Verbose() {
			log.Println(err)
		}
	}
	_, err := New("")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNewMembers(t *testing.T) {
	t.Parallel()

	elem := element(t)
	s, err := New("Rec",
		Constant("magic", 4, 0xA),
		Uint("head", 7),
		Uint("fx", 1).Computed(NonEmpty("items")),
		Padding(3),
		RepeatOf("items", elem).If(Equals("fx", 1)).Marker("more", 1, 0),
		GroupOf("nested", elem),
	)
	require.NoError(t, err)

	assert.Equal(t, 6, s.Len())
	assert.Equal(t, 3, s.NumMembers())
	assert.Equal(t, 0, s.MemberIndex("head"))
	assert.Equal(t, 1, s.MemberIndex("items"))
	assert.Equal(t, 2, s.MemberIndex("nested"))
	assert.Equal(t, -1, s.MemberIndex("fx"), "temp fields own no slot")
	assert.Equal(t, -1, s.MemberIndex("magic"))

	e, ok := s.Lookup("fx")
	require.True(t, ok)
	assert.Equal(t, Temp, e.(*Field).Role)

	// Marker without until derives the termination predicate.
	r := s.Member(1).(*Repeat)
	require.NotNil(t, r.Until)
}

func TestNewCopiesEntries(t *testing.T) {
	t.Parallel()

	f := Uint("a", 5)
	s, err := New("S", f)
	require.NoError(t, err)
	f.Width = 70
	f.Name = "b"
	assert.Equal(t, 5, s.Entry(0).(*Field).Width)
	assert.Equal(t, 0, s.MemberIndex("a"))
}

func TestLastMarkerPredicate(t *testing.T) {
	t.Parallel()

	p := lastMarker("more", 0, false, 1)
	assert.True(t, p(mapState{"more": 0}))
	assert.False(t, p(mapState{"more": 1}))
	assert.False(t, p(mapState{}))

	p = lastMarker("flag", 0x3, true, 2)
	assert.True(t, p(mapState{"flag": -1}))
}

func TestWithOrderAndFingerprint(t *testing.T) {
	t.Parallel()

	a := Must(New("S", Uint("a", 12), Int("b", 4).Order(bitio.LittleEndian, bitio.LSBFirst)))
	b := Must(New("S", Uint("a", 12), Int("b", 4).Order(bitio.LittleEndian, bitio.LSBFirst)))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint().Short(), 16)

	le := a.WithOrder(bitio.LittleEndian, bitio.LSBFirst)
	assert.Equal(t, bitio.LittleEndian, le.ByteOrder())
	assert.Equal(t, bitio.DefaultByteOrder, a.ByteOrder())
	assert.NotEqual(t, a.Fingerprint(), le.Fingerprint())

	c := Must(New("S", Uint("a", 12), Int("b", 5)))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestString(t *testing.T) {
	t.Parallel()

	s := Must(New("Rec",
		Uint("head", 7),
		Uint("fx", 1).Computed(NonEmpty("items")),
		RepeatOf("items", element(t)).If(Equals("fx", 1)).Marker("more", 1, 0).Limit(4),
	))
	want := "Rec byte_order=default bit_order=default\n" +
		"  stored head u7\n" +
		"  temp fx u1\n" +
		"  repeat items when until max=4 marker=more(1/0)\n" +
		"    Elem byte_order=default bit_order=default\n" +
		"      stored a u4\n" +
		"      stored b i8\n" +
		"      stored c u3\n" +
		"      stored more u1\n"
	assert.Equal(t, want, s.String())
}

func TestMustPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Must(New("S", Uint("a", 0))) })
}

func TestExprHelpers(t *testing.T) {
	t.Parallel()

	s := mapState{"x": 3, "items": 2}
	assert.Equal(t, int64(3), Ref("x")(s))
	assert.Equal(t, int64(0), Ref("y")(s))
	assert.Equal(t, int64(7), Const(7)(s))
	assert.Equal(t, int64(2), LenOf("items")(s))
	assert.Equal(t, int64(1), NonEmpty("items")(s))
	assert.Equal(t, int64(0), NonEmpty("none")(s))
	assert.True(t, Equals("x", 3)(s))
	assert.False(t, Equals("y", 0)(s), "unknown names never match")
	assert.True(t, NotEquals("x", 4)(s))
	assert.True(t, Not(Equals("x", 4))(s))
}

// mapState serves both integers and lengths from one map.
type mapState map[string]int64

func (m mapState) Uint(name string) (uint64, bool) {
	v, ok := m[name]
	return uint64(v), ok
}

func (m mapState) Int(name string) (int64, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapState) Len(name string) (int, bool) {
	v, ok := m[name]
	return int(v), ok
}
