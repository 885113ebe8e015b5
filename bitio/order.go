package bitio

import (
	"errors"
	"fmt"
)

// MaxWidth is the widest field a cursor reads or writes, in bits.
const MaxWidth = 64

var (
	// ErrOutOfBounds reports a read past the end of the buffer.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrValueOverflow reports a value that does not fit the field width.
	ErrValueOverflow = errors.New("value overflow")
	// ErrWidth reports a field width outside 1..MaxWidth.
	ErrWidth = errors.New("invalid width")
)

// ByteOrder selects which chunk of a multi-byte field is most significant.
type ByteOrder uint8

const (
	// DefaultByteOrder defers to the cursor default.
	DefaultByteOrder ByteOrder = iota
	BigEndian
	LittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case DefaultByteOrder:
		return "default"
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

// ParseByteOrder accepts "big", "be", "little", "le" and "" (default).
func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "":
		return DefaultByteOrder, nil
	case "big", "be":
		return BigEndian, nil
	case "little", "le":
		return LittleEndian, nil
	}
	return DefaultByteOrder, fmt.Errorf("unknown byte order %q", s)
}

// BitOrder selects which physical bit of a byte is consumed first.
type BitOrder uint8

const (
	// DefaultBitOrder defers to the cursor default.
	DefaultBitOrder BitOrder = iota
	MSBFirst
	LSBFirst
)

func (o BitOrder) String() string {
	switch o {
	case DefaultBitOrder:
		return "default"
	case MSBFirst:
		return "msb"
	case LSBFirst:
		return "lsb"
	}
	return fmt.Sprintf("BitOrder(%d)", uint8(o))
}

// ParseBitOrder accepts "msb", "lsb" and "" (default).
func ParseBitOrder(s string) (BitOrder, error) {
	switch s {
	case "":
		return DefaultBitOrder, nil
	case "msb":
		return MSBFirst, nil
	case "lsb":
		return LSBFirst, nil
	}
	return DefaultBitOrder, fmt.Errorf("unknown bit order %q", s)
}

// FitsUint reports whether v is representable as an unsigned width-bit integer.
func FitsUint(v uint64, width int) bool {
	return width >= MaxWidth || v>>uint(width) == 0
}

// FitsInt reports whether v is representable as a two's-complement
// width-bit integer.
func FitsInt(v int64, width int) bool {
	if width >= MaxWidth {
		return true
	}
	lo := int64(-1) << uint(width-1)
	hi := int64(1)<<uint(width-1) - 1
	return v >= lo && v <= hi
}

// SignExtend interprets the low width bits of v as a two's-complement integer.
func SignExtend(v uint64, width int) int64 {
	if width >= MaxWidth {
		return int64(v)
	}
	if v>>uint(width-1)&1 == 1 {
		v |= ^uint64(0) << uint(width)
	}
	return int64(v)
}

func checkWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d bits", ErrWidth, width)
	}
	return nil
}

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}
