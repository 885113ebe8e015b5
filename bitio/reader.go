package bitio

import "fmt"

// Reader reads bit fields from a borrowed byte slice.
type Reader struct {
	data      []byte
	pos       int // Offset of the next bit, from the start of data.
	byteOrder ByteOrder
	bitOrder  BitOrder
}

// NewReader returns a Reader positioned at the first bit of data. The
// slice is not copied and must not change while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, byteOrder: BigEndian, bitOrder: MSBFirst}
}

// SetDefaults sets the orders used for fields that do not name their own.
// Zero arguments leave the current default unchanged.
func (r *Reader) SetDefaults(byteOrder ByteOrder, bitOrder BitOrder) {
	if byteOrder != DefaultByteOrder {
		r.byteOrder = byteOrder
	}
	if bitOrder != DefaultBitOrder {
		r.bitOrder = bitOrder
	}
}

// Pos returns the current bit offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the size of the underlying buffer in bits.
func (r *Reader) Len() int {
	return len(r.data) * 8
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// Seek moves the cursor to an absolute bit offset.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data)*8 {
		return fmt.Errorf("%w: seek to bit %d of %d", ErrOutOfBounds, pos, len(r.data)*8)
	}
	r.pos = pos
	return nil
}

// Skip advances the cursor by n bits without interpreting them.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("%w: skip %d bits at offset %d, %d left", ErrOutOfBounds, n, r.pos, r.Remaining())
	}
	r.pos += n
	return nil
}

// ReadUint reads an unsigned width-bit field.
func (r *Reader) ReadUint(width int, byteOrder ByteOrder, bitOrder BitOrder) (uint64, error) {
	if err := checkWidth(width); err != nil {
		return 0, err
	}
	if width > r.Remaining() {
		return 0, fmt.Errorf("%w: need %d bits at offset %d, %d left", ErrOutOfBounds, width, r.pos, r.Remaining())
	}
	if byteOrder == DefaultByteOrder {
		byteOrder = r.byteOrder
	}
	if bitOrder == DefaultBitOrder {
		bitOrder = r.bitOrder
	}

	var v uint64
	var shift int
	for left := width; left > 0; {
		n := left
		if n > 8 {
			n = 8
		}
		c := r.chunk(n, bitOrder)
		if byteOrder == LittleEndian {
			v |= c << uint(shift)
			shift += n
		} else {
			v = v<<uint(n) | c
		}
		left -= n
	}
	return v, nil
}

// ReadInt reads a two's-complement width-bit field.
func (r *Reader) ReadInt(width int, byteOrder ByteOrder, bitOrder BitOrder) (int64, error) {
	v, err := r.ReadUint(width, byteOrder, bitOrder)
	if err != nil {
		return 0, err
	}
	return SignExtend(v, width), nil
}

// chunk takes n (1..8) bits and assembles them per bitOrder. Bounds are
// checked by the caller.
func (r *Reader) chunk(n int, bitOrder BitOrder) uint64 {
	// Whole aligned byte: both orders yield the byte value itself.
	if n == 8 && r.pos&7 == 0 {
		c := uint64(r.data[r.pos>>3])
		r.pos += 8
		return c
	}
	var c uint64
	for i := 0; i < n; i++ {
		b := r.data[r.pos>>3]
		if bitOrder == LSBFirst {
			c |= uint64(b>>uint(r.pos&7)&1) << uint(i)
		} else {
			c = c<<1 | uint64(b>>uint(7-r.pos&7)&1)
		}
		r.pos++
	}
	return c
}
