package bitio

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderFixedItem(t *testing.T) {
	t.Parallel()

	// 00101|111 111110|00 00000000 00000111
	r := NewReader([]byte{0b00101111, 0b11111000, 0x00, 0x07})
	u, err := r.ReadUint(5, BigEndian, MSBFirst)
	if err != nil || u != 5 {
		t.Fatalf("Read 5 bits failed. Got: %v %v. Want: 5 <nil>", u, err)
	}
	i, err := r.ReadInt(9, BigEndian, MSBFirst)
	if err != nil || i != -2 {
		t.Fatalf("Read 9 bits failed. Got: %v %v. Want: -2 <nil>", i, err)
	}
	i, err = r.ReadInt(18, BigEndian, MSBFirst)
	if err != nil || i != 7 {
		t.Fatalf("Read 18 bits failed. Got: %v %v. Want: 7 <nil>", i, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining bits. Got: %v. Want: 0", r.Remaining())
	}
}

// LSB-first little-endian is plain least-significant-bit packing.
func TestReaderLSBPacking(t *testing.T) {
	t.Parallel()

	data := []byte{0x00, 0x01, 0x02, 0x10, 0x80, 0x3A, 0x02, 0x3C}
	seq := []struct {
		bits       uint64
		count, pos int
	}{
		{0, 2, 2}, {0, 3, 5}, {0, 3, 8}, {1, 3, 11}, {64, 10, 21},
		{128, 10, 31}, {1280, 11, 42}, {142, 11, 53}, {0, 5, 58},
		{7, 3, 61}, {1, 3, 64},
	}
	r := NewReader(data)
	r.SetDefaults(LittleEndian, LSBFirst)
	for i, s := range seq {
		got, err := r.ReadUint(s.count, DefaultByteOrder, DefaultBitOrder)
		require.NoError(t, err, "read %d", i)
		assert.Equal(t, s.bits, got, "bits %d", i)
		assert.Equal(t, s.pos, r.Pos(), "pos %d", i)
	}
}

func TestOrderComposition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		byteOrder ByteOrder
		bitOrder  BitOrder
		want      []byte
	}{
		{"msb big", BigEndian, MSBFirst, []byte{0xAB, 0xC0}},
		{"msb little", LittleEndian, MSBFirst, []byte{0xBC, 0xA0}},
		{"lsb big", BigEndian, LSBFirst, []byte{0xAB, 0x0C}},
		{"lsb little", LittleEndian, LSBFirst, []byte{0xBC, 0x0A}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			w := NewWriter()
			require.NoError(t, w.WriteUint(0xABC, 12, c.byteOrder, c.bitOrder))
			assert.Equal(t, c.want, w.Bytes())

			r := NewReader(w.Bytes())
			got, err := r.ReadUint(12, c.byteOrder, c.bitOrder)
			require.NoError(t, err)
			assert.Equal(t, uint64(0xABC), got)
		})
	}
}

func TestByteAlignedEndianness(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	require.NoError(t, w.WriteUint(0x1234, 16, LittleEndian, MSBFirst))
	require.NoError(t, w.WriteUint(0x1234, 16, BigEndian, LSBFirst))
	assert.Equal(t, []byte{0x34, 0x12, 0x12, 0x34}, w.Bytes())
}

func TestRoundTripMatrix(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(1))
	type field struct {
		width     int
		signed    bool
		byteOrder ByteOrder
		bitOrder  BitOrder
		u         uint64
		i         int64
	}
	var fields []field
	for n := 0; n < 500; n++ {
		f := field{
			width:     1 + rnd.Intn(MaxWidth),
			signed:    rnd.Intn(2) == 0,
			byteOrder: ByteOrder(1 + rnd.Intn(2)),
			bitOrder:  BitOrder(1 + rnd.Intn(2)),
		}
		raw := rnd.Uint64() & mask(f.width)
		if f.signed {
			f.i = SignExtend(raw, f.width)
		} else {
			f.u = raw
		}
		fields = append(fields, f)
	}

	w := NewWriter()
	for n, f := range fields {
		var err error
		if f.signed {
			err = w.WriteInt(f.i, f.width, f.byteOrder, f.bitOrder)
		} else {
			err = w.WriteUint(f.u, f.width, f.byteOrder, f.bitOrder)
		}
		if err != nil {
			t.Fatalf("Write field %d failed: %v", n, err)
		}
	}

	r := NewReader(w.Bytes())
	for n, f := range fields {
		if f.signed {
			got, err := r.ReadInt(f.width, f.byteOrder, f.bitOrder)
			if err != nil || got != f.i {
				t.Fatalf("Field %d (%+v). Got: %v %v. Want: %v <nil>", n, f, got, err, f.i)
			}
		} else {
			got, err := r.ReadUint(f.width, f.byteOrder, f.bitOrder)
			if err != nil || got != f.u {
				t.Fatalf("Field %d (%+v). Got: %v %v. Want: %v <nil>", n, f, got, err, f.u)
			}
		}
	}
	assert.Less(t, r.Remaining(), 8)
}

func TestReaderOutOfBounds(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0xFF})
	_, err := r.ReadUint(3, BigEndian, MSBFirst)
	require.NoError(t, err)
	_, err = r.ReadUint(6, BigEndian, MSBFirst)
	assert.True(t, errors.Is(err, ErrOutOfBounds), "got %v", err)
	assert.Equal(t, 3, r.Pos(), "offset must not move on failure")
	assert.ErrorIs(t, r.Skip(6), ErrOutOfBounds)
	assert.NoError(t, r.Skip(5))
	assert.ErrorIs(t, r.Seek(9), ErrOutOfBounds)
}

func TestWidthRejected(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 16))
	_, err := r.ReadUint(0, BigEndian, MSBFirst)
	assert.ErrorIs(t, err, ErrWidth)
	_, err = r.ReadUint(65, BigEndian, MSBFirst)
	assert.ErrorIs(t, err, ErrWidth)
	assert.ErrorIs(t, NewWriter().WriteUint(0, 0, BigEndian, MSBFirst), ErrWidth)
}

func TestWriterOverflow(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	require.NoError(t, w.WriteUint(1, 3, BigEndian, MSBFirst))
	before := append([]byte(nil), w.Bytes()...)

	assert.ErrorIs(t, w.WriteUint(32, 5, BigEndian, MSBFirst), ErrValueOverflow)
	assert.ErrorIs(t, w.WriteInt(16, 5, BigEndian, MSBFirst), ErrValueOverflow)
	assert.ErrorIs(t, w.WriteInt(-17, 5, BigEndian, MSBFirst), ErrValueOverflow)
	assert.Equal(t, 3, w.Pos(), "nothing written on overflow")
	assert.Equal(t, before, w.Bytes())

	assert.NoError(t, w.WriteInt(-16, 5, BigEndian, MSBFirst))
	assert.NoError(t, w.WriteInt(15, 5, BigEndian, MSBFirst))
	assert.NoError(t, w.WriteUint(^uint64(0), 64, BigEndian, MSBFirst))
}

func TestWriterZeroPadding(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	require.NoError(t, w.WriteUint(1, 1, BigEndian, MSBFirst))
	assert.Equal(t, []byte{0x80}, w.Bytes())
	require.NoError(t, w.WriteUint(1, 1, BigEndian, LSBFirst))
	// Second bit position is bit 1 under LSB-first.
	assert.Equal(t, []byte{0x82}, w.Bytes())
	w.Pad(9, MSBFirst)
	assert.Equal(t, 11, w.Pos())
	assert.Equal(t, []byte{0x82, 0x00}, w.Bytes())
}

func TestWriterMarkReset(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	require.NoError(t, w.WriteUint(0x5, 3, BigEndian, MSBFirst))
	m := w.Mark()
	require.NoError(t, w.WriteUint(0x1FFF, 13, BigEndian, MSBFirst))
	require.NoError(t, w.WriteUint(0xFF, 8, BigEndian, MSBFirst))
	w.Reset(m)
	assert.Equal(t, 3, w.Pos())
	assert.Equal(t, []byte{0xA0}, w.Bytes())

	require.NoError(t, w.WriteUint(0, 5, BigEndian, MSBFirst))
	assert.Equal(t, []byte{0xA0}, w.Bytes())
}

func TestWriterOver(t *testing.T) {
	t.Parallel()

	buf := []byte{0xFF, 0xFF}
	w := NewWriterOver(buf)
	require.NoError(t, w.WriteUint(0x2, 3, BigEndian, MSBFirst))
	require.NoError(t, w.WriteUint(0x0, 2, BigEndian, MSBFirst))
	assert.Equal(t, 5, w.Pos())
	assert.Equal(t, []byte{0x47, 0xFF}, w.Bytes())

	require.NoError(t, w.WriteUint(0x1FF, 13, BigEndian, MSBFirst))
	assert.Equal(t, 18, w.Pos())
	assert.Equal(t, []byte{0x40, 0x7F, 0xC0}, w.Bytes())
}

func TestFits(t *testing.T) {
	t.Parallel()

	assert.True(t, FitsUint(31, 5))
	assert.False(t, FitsUint(32, 5))
	assert.True(t, FitsUint(^uint64(0), 64))
	assert.True(t, FitsInt(-256, 9))
	assert.False(t, FitsInt(256, 9))
	assert.Equal(t, int64(-2), SignExtend(0x1FE, 9))
	assert.Equal(t, int64(254), SignExtend(0xFE, 9))
}

func TestParseOrders(t *testing.T) {
	t.Parallel()

	bo, err := ParseByteOrder("le")
	assert.NoError(t, err)
	assert.Equal(t, LittleEndian, bo)
	_, err = ParseByteOrder("middle")
	assert.Error(t, err)
	o, err := ParseBitOrder("lsb")
	assert.NoError(t, err)
	assert.Equal(t, LSBFirst, o)
	assert.Equal(t, "msb", MSBFirst.String())
}
