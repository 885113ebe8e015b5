/*
Package bitio implements bit-precision reading and writing of integers
over byte buffers.

A Reader consumes fields of 1 to 64 bits from a borrowed byte slice; a
Writer produces them into a buffer it owns, growing it by whole bytes.
Both track an absolute bit offset.

Two orthogonal settings decide how the bits of a field map onto bytes:

	BitOrder
MSBFirst takes bit 7 of the current byte first and moves downward;
LSBFirst takes bit 0 first and moves upward.
	ByteOrder
The bits of a field are cut, in stream order, into chunks of 8 (the last
chunk may be shorter). BigEndian makes the first chunk the most
significant; LittleEndian makes it the least significant. Within a chunk
the first bit taken is the chunk's most significant bit under MSBFirst
and its least significant bit under LSBFirst.

Byte-aligned fields therefore get the usual big- or little-endian layout,
MSBFirst with BigEndian is plain most-significant-bit streaming, and
LSBFirst with LittleEndian is plain least-significant-bit packing.

The zero ByteOrder and zero BitOrder select the cursor's defaults, which
are BigEndian and MSBFirst unless changed with SetDefaults.
*/
package bitio
