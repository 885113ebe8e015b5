package bitio

import "fmt"

// Writer writes bit fields into a buffer it owns. The buffer grows by
// whole bytes; bits of the last byte beyond the cursor are zero unless
// the Writer was made by NewWriterOver.
type Writer struct {
	data      []byte
	pos       int
	byteOrder ByteOrder
	bitOrder  BitOrder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{byteOrder: BigEndian, bitOrder: MSBFirst}
}

// NewWriterOver returns a Writer that overwrites buf from its first bit,
// growing it when writes run past its end. Bits the Writer never reaches
// keep their values, and Bytes covers all of buf. Reset truncates buf at
// the mark.
func NewWriterOver(buf []byte) *Writer {
	return &Writer{data: buf, byteOrder: BigEndian, bitOrder: MSBFirst}
}

// SetDefaults sets the orders used for fields that do not name their own.
// Zero arguments leave the current default unchanged.
func (w *Writer) SetDefaults(byteOrder ByteOrder, bitOrder BitOrder) {
	if byteOrder != DefaultByteOrder {
		w.byteOrder = byteOrder
	}
	if bitOrder != DefaultBitOrder {
		w.bitOrder = bitOrder
	}
}

// Bytes returns the written bytes. The slice aliases the Writer's buffer
// until the next write.
func (w *Writer) Bytes() []byte {
	return w.data
}

// Pos returns the number of bits written.
func (w *Writer) Pos() int {
	return w.pos
}

// Mark records the writer state so a failed sequence of writes can be
// undone with Reset.
type Mark struct {
	pos  int
	last byte
}

// Mark returns the current state.
func (w *Writer) Mark() Mark {
	m := Mark{pos: w.pos}
	if w.pos&7 != 0 {
		m.last = w.data[w.pos>>3]
	}
	return m
}

// Reset discards everything written since m was taken.
func (w *Writer) Reset(m Mark) {
	w.data = w.data[:(m.pos+7)/8]
	if m.pos&7 != 0 {
		w.data[m.pos>>3] = m.last
	}
	w.pos = m.pos
}

// WriteUint writes v as an unsigned width-bit field.
func (w *Writer) WriteUint(v uint64, width int, byteOrder ByteOrder, bitOrder BitOrder) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	if !FitsUint(v, width) {
		return fmt.Errorf("%w: %d does not fit %d unsigned bits", ErrValueOverflow, v, width)
	}
	w.write(v, width, byteOrder, bitOrder)
	return nil
}

// WriteInt writes v as a two's-complement width-bit field.
func (w *Writer) WriteInt(v int64, width int, byteOrder ByteOrder, bitOrder BitOrder) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	if !FitsInt(v, width) {
		return fmt.Errorf("%w: %d does not fit %d signed bits", ErrValueOverflow, v, width)
	}
	w.write(uint64(v)&mask(width), width, byteOrder, bitOrder)
	return nil
}

// Pad writes n zero bits.
func (w *Writer) Pad(n int, bitOrder BitOrder) {
	if bitOrder == DefaultBitOrder {
		bitOrder = w.bitOrder
	}
	w.grow(n)
	for ; n > 0; n-- {
		w.bit(0, bitOrder)
	}
}

func (w *Writer) write(v uint64, width int, byteOrder ByteOrder, bitOrder BitOrder) {
	if byteOrder == DefaultByteOrder {
		byteOrder = w.byteOrder
	}
	if bitOrder == DefaultBitOrder {
		bitOrder = w.bitOrder
	}
	w.grow(width)

	var done int
	for done < width {
		n := width - done
		if n > 8 {
			n = 8
		}
		var c uint64
		if byteOrder == LittleEndian {
			c = v >> uint(done) & mask(n)
		} else {
			c = v >> uint(width-done-n) & mask(n)
		}
		w.chunk(c, n, bitOrder)
		done += n
	}
}

// chunk emits the low n bits of c per bitOrder; inverse of Reader.chunk.
func (w *Writer) chunk(c uint64, n int, bitOrder BitOrder) {
	if n == 8 && w.pos&7 == 0 {
		w.data[w.pos>>3] = byte(c)
		w.pos += 8
		return
	}
	for i := 0; i < n; i++ {
		if bitOrder == LSBFirst {
			w.bit(byte(c>>uint(i)&1), bitOrder)
		} else {
			w.bit(byte(c>>uint(n-1-i)&1), bitOrder)
		}
	}
}

func (w *Writer) bit(b byte, bitOrder BitOrder) {
	var m byte
	if bitOrder == LSBFirst {
		m = 1 << uint(w.pos&7)
	} else {
		m = 0x80 >> uint(w.pos&7)
	}
	if b != 0 {
		w.data[w.pos>>3] |= m
	} else {
		w.data[w.pos>>3] &^= m
	}
	w.pos++
}

// grow makes room for n more bits.
func (w *Writer) grow(n int) {
	need := (w.pos + n + 7) / 8
	for len(w.data) < need {
		w.data = append(w.data, 0)
	}
}
