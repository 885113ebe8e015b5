package codec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

// ErrMismatch reports data or a record that contradicts the schema: a
// magic field holding the wrong constant, a list whose length disagrees
// with its count, or a value present where its guard is false.
var ErrMismatch = errors.New("schema mismatch")

// Error is a per-call failure of Decode, Encode or Update.
type Error struct {
	Op     string // "decode", "encode" or "update".
	Schema string // Name of the top-level schema.
	Path   string // Failing entry, as in "items[1].fx".
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Schema, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Schema, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger traces every entry processed at Debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// Codec decodes, encodes and updates records of one schema.
type Codec struct {
	schema *schema.Schema
	logger *slog.Logger
}

// New returns a Codec for s.
func New(s *schema.Schema, opts ...Option) *Codec {
	c := &Codec{schema: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema returns the top-level schema.
func (c *Codec) Schema() *schema.Schema {
	return c.schema
}

// Decode decodes a record from the start of data. Bits after the record
// are ignored.
func (c *Codec) Decode(data []byte) (*record.Record, error) {
	return c.DecodeFrom(bitio.NewReader(data))
}

// DecodeFrom decodes a record at the reader's position. On failure the
// reader is left where it was.
func (c *Codec) DecodeFrom(r *bitio.Reader) (*record.Record, error) {
	start := r.Pos()
	d := &decoder{pass: c.newPass("decode"), r: r}
	rec, _, err := d.record(c.schema, nil, orders{}, "")
	if err != nil {
		r.Seek(start)
		return nil, err
	}
	return rec, nil
}

// Encode encodes rec into a new buffer.
func (c *Codec) Encode(rec *record.Record) ([]byte, error) {
	w := bitio.NewWriter()
	if err := c.EncodeTo(w, rec); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo appends rec to w. On failure everything written by the call
// is discarded.
func (c *Codec) EncodeTo(w *bitio.Writer, rec *record.Record) error {
	p := c.newPass("encode")
	if rec == nil || rec.Schema() != c.schema {
		return p.errorf("", "%w: record is not of schema %s", ErrMismatch, c.schema.Name())
	}
	mark := w.Mark()
	e := &encoder{pass: p, w: w}
	if err := e.record(rec, nil, orders{}, ""); err != nil {
		w.Reset(mark)
		return err
	}
	return nil
}

// Update recomputes continuation markers and derived fields of rec in
// place. Running it twice changes nothing the second time. On failure rec
// is left unchanged.
func (c *Codec) Update(rec *record.Record) error {
	p := c.newPass("update")
	if rec == nil || rec.Schema() != c.schema {
		return p.errorf("", "%w: record is not of schema %s", ErrMismatch, c.schema.Name())
	}
	// Derived values may depend on each other, so passes repeat until
	// nothing changes. They run on a copy first; rec is only touched once
	// the copy has settled without error.
	trial := &updater{pass: &pass{op: p.op, schema: p.schema}}
	work := rec.Clone()
	limit := passLimit(c.schema) + 1
	passes := 0
	for {
		before := work.Clone()
		if err := trial.record(work, nil, ""); err != nil {
			return err
		}
		passes++
		if work.Equal(before) {
			break
		}
		if passes > limit {
			return p.errorf("", "%w: derived values still change after %d passes", ErrMismatch, passes)
		}
	}
	u := &updater{pass: p}
	for i := 0; i < passes; i++ {
		if err := u.record(rec, nil, ""); err != nil {
			return err
		}
	}
	return nil
}

// Decode decodes data with a Codec for s.
func Decode(s *schema.Schema, data []byte) (*record.Record, error) {
	return New(s).Decode(data)
}

// Encode encodes rec with a Codec for its schema.
func Encode(rec *record.Record) ([]byte, error) {
	return New(rec.Schema()).Encode(rec)
}

// Update updates rec with a Codec for its schema.
func Update(rec *record.Record) error {
	return New(rec.Schema()).Update(rec)
}

// pass carries what one call needs to report and trace.
type pass struct {
	op     string
	schema string
	logger *slog.Logger
	debug  bool
}

func (c *Codec) newPass(op string) *pass {
	p := &pass{op: op, schema: c.schema.Name(), logger: c.logger}
	p.debug = p.logger != nil && p.logger.Enabled(context.Background(), slog.LevelDebug)
	return p
}

// trace logs only when a logger accepting Debug is configured.
func (p *pass) trace(msg string, args ...any) {
	if p.debug {
		p.logger.Debug(msg, append([]any{"op", p.op}, args...)...)
	}
}

func (p *pass) wrap(path string, err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Op: p.op, Schema: p.schema, Path: path, Err: err}
}

func (p *pass) errorf(path, format string, a ...any) error {
	return p.wrap(path, fmt.Errorf(format, a...))
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// orders resolves the byte and bit order of each field: the field's own,
// else the innermost schema naming one, else the cursor default.
type orders struct {
	byteOrder bitio.ByteOrder
	bitOrder  bitio.BitOrder
}

func (o orders) inherit(s *schema.Schema) orders {
	if s.ByteOrder() != bitio.DefaultByteOrder {
		o.byteOrder = s.ByteOrder()
	}
	if s.BitOrder() != bitio.DefaultBitOrder {
		o.bitOrder = s.BitOrder()
	}
	return o
}

func (o orders) of(f *schema.Field) orders {
	if f.ByteOrder != bitio.DefaultByteOrder {
		o.byteOrder = f.ByteOrder
	}
	if f.BitOrder != bitio.DefaultBitOrder {
		o.bitOrder = f.BitOrder
	}
	return o
}

// present evaluates the guard of e.
func present(e schema.Entry, sc *scope) bool {
	g := e.Guard()
	return g == nil || g(sc)
}
