package catalog

import (
	"errors"
	"testing"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/codec"
	"github.com/mkch/bitrec/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	data := []byte{0b00101_111, 0b111110_00, 0x00, 0x07}
	rec, err := codec.Decode(Fixed, data)
	require.NoError(t, err)
	v, err := Scaled(rec, "fix18", Fix18LSB)
	require.NoError(t, err)
	assert.InDelta(t, 0.07, v, 1e-9)

	require.NoError(t, SetScaled(rec, "fix18", 5.02, Fix18LSB))
	raw, _ := rec.Int("fix18")
	assert.Equal(t, int64(502), raw)

	err = SetScaled(rec, "fix18", 1400, Fix18LSB)
	assert.True(t, errors.Is(err, bitio.ErrValueOverflow), "131071 units at most")
	err = SetScaled(rec, "uint5", -1, 1)
	assert.True(t, errors.Is(err, bitio.ErrValueOverflow))
	require.NoError(t, SetScaled(rec, "uint5", 31, 1))
	err = SetScaled(rec, "nope", 1, 1)
	assert.True(t, errors.Is(err, record.ErrNoField))
	_, err = Scaled(rec, "nope", 1)
	assert.True(t, errors.Is(err, record.ErrNoField))
}

func TestExtended(t *testing.T) {
	t.Parallel()

	data := []byte{0x03, 0x0f, 0xaf, 0xff, 0xb0}
	rec, err := codec.Decode(Extended, data)
	require.NoError(t, err)
	ext, err := rec.List("ext")
	require.NoError(t, err)
	require.Equal(t, 2, ext.Len())

	ext.AppendNew()
	require.NoError(t, codec.Update(rec))
	out, err := codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x0f, 0xaf, 0xff, 0xb1, 0x00, 0x00}, out)

	ext.Clear()
	out, err = codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, out)
}

func TestCompound(t *testing.T) {
	t.Parallel()

	data := []byte{0xA0, 0x01, 0x02, 0xFF, 0xFF, 0x02, 0x01, 0x23, 0x0A, 0xBC}
	rec, err := codec.Decode(Compound, data)
	require.NoError(t, err)

	pos, err := rec.Group("position")
	require.NoError(t, err)
	require.NotNil(t, pos)
	y, _ := pos.Int("y")
	assert.Equal(t, int64(-1), y)
	vel, _ := rec.Group("velocity")
	assert.Nil(t, vel)
	tracks, _ := rec.List("tracks")
	require.Equal(t, 2, tracks.Len())
	n, _ := tracks.At(1).Uint("number")
	assert.Equal(t, uint64(0xABC), n)

	out, err := codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	// Add velocity and drop a track; Update rewrites the presence bits
	// and the repetition count.
	v := record.New(Velocity)
	require.NoError(t, v.SetInt("vx", -2))
	require.NoError(t, v.SetInt("vy", 3))
	require.NoError(t, rec.SetGroup("velocity", v))
	require.NoError(t, tracks.Remove(0))
	require.NoError(t, codec.Update(rec))
	out, err = codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE0, 0x01, 0x02, 0xFF, 0xFF, 0xFF, 0xE0, 0x03, 0x01, 0x0A, 0xBC}, out)

	_, err = codec.Decode(Compound, []byte{0xA1})
	assert.True(t, errors.Is(err, codec.ErrMismatch), "fx must be 0")
}

func TestExplicitLength(t *testing.T) {
	t.Parallel()

	data := []byte{0x03, 0xAA, 0xBB}
	rec, err := codec.Decode(ExplicitLength, data)
	require.NoError(t, err)
	octets, err := rec.List("octets")
	require.NoError(t, err)
	require.Equal(t, 2, octets.Len())
	v, _ := octets.At(1).Uint("v")
	assert.Equal(t, uint64(0xBB), v)

	require.NoError(t, octets.AppendNew().SetUint("v", 0xCC))
	require.NoError(t, codec.Update(rec))
	out, err := codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0xAA, 0xBB, 0xCC}, out)

	_, err = codec.Decode(ExplicitLength, []byte{0x00})
	assert.True(t, errors.Is(err, codec.ErrMismatch), "length counts its own octet")
}

func TestRepetitive(t *testing.T) {
	t.Parallel()

	data := []byte{0x02, 0x01, 0x23, 0x0A, 0xBC}
	rec, err := codec.Decode(Repetitive, data)
	require.NoError(t, err)
	items, err := rec.List("items")
	require.NoError(t, err)
	require.Equal(t, 2, items.Len())
	n, _ := items.At(0).Uint("number")
	assert.Equal(t, uint64(0x123), n)

	require.NoError(t, items.Remove(0))
	require.NoError(t, codec.Update(rec))
	out, err := codec.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x0A, 0xBC}, out)

	_, err = codec.Decode(Repetitive, []byte{0x02, 0x01, 0x23})
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"compound", "explicit", "extended", "fixed", "repetitive"}, Names())
	s, ok := Lookup("fixed")
	assert.True(t, ok)
	assert.Same(t, Fixed, s)
	_, ok = Lookup("Fixed")
	assert.False(t, ok)
}
