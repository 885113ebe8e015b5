/*
Package codec decodes byte buffers into records and encodes records back
into bytes, driven by a schema.

	c := codec.New(s)
	rec, err := c.Decode(data)
	...
	items, _ := rec.List("items")
	items.AppendNew()
	if err := c.Update(rec); err != nil {
		...
	}
	out, err := c.Encode(rec)

Decoding walks the schema in order. Temp fields are bound in a scope that
lives only for the pass and is visible to later guards, counts and
termination predicates, in the current record and in nested ones. A
guarded entry whose guard is false consumes no bits.

Encoding mirrors decoding. Temp fields are recomputed from their value
expressions, which see the whole record being encoded; guards see only
what a decoder would know at that point. Lists are written with exactly
the elements they hold, so keeping continuation markers consistent is
the job of Update.

Decode and Encode are all-or-nothing: on failure no record is returned,
and DecodeFrom and EncodeTo restore the cursor. Errors are *Error values
naming the failing field path and wrapping bitio.ErrOutOfBounds,
bitio.ErrValueOverflow or ErrMismatch.

A Codec holds no per-call state and may be shared between goroutines.
*/
package codec
