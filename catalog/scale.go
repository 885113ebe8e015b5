package catalog

import (
	"fmt"
	"math"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/record"
	"github.com/mkch/bitrec/schema"
)

// Scaled returns the named integer field multiplied by lsb.
func Scaled(r *record.Record, name string, lsb float64) (float64, error) {
	v, ok := r.Int(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", record.ErrNoField, r.Schema().Name(), name)
	}
	return float64(v) * lsb, nil
}

// SetScaled stores v/lsb, rounded to the nearest integer, into the named
// integer field. Values that do not fit the field are rejected rather than
// clamped.
func SetScaled(r *record.Record, name string, v, lsb float64) error {
	e, ok := r.Schema().Lookup(name)
	f, isField := e.(*schema.Field)
	if !ok || !isField || f.Role != schema.Stored {
		return fmt.Errorf("%w: %s.%s", record.ErrNoField, r.Schema().Name(), name)
	}
	units := math.Round(v / lsb)
	if math.IsNaN(units) || units < math.MinInt64 || units >= math.MaxInt64 {
		return fmt.Errorf("%w: %v does not fit %s.%s", bitio.ErrValueOverflow, v, r.Schema().Name(), name)
	}
	n := int64(units)
	if f.Signed && !bitio.FitsInt(n, f.Width) || !f.Signed && (n < 0 || !bitio.FitsUint(uint64(n), f.Width)) {
		return fmt.Errorf("%w: %v does not fit %s.%s", bitio.ErrValueOverflow, v, r.Schema().Name(), name)
	}
	return r.SetInt(name, n)
}
