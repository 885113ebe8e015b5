package codec

import (
	"fmt"

	"github.com/mkch/bitrec/schema"
)

// repeatState is the lifecycle of one list being decoded.
type repeatState uint8

const (
	repeatEmpty repeatState = iota
	repeatDecoding
	repeatTerminated // Until held, or Count elements were read.
	repeatExhausted  // Max elements were read.
)

func (s repeatState) String() string {
	switch s {
	case repeatEmpty:
		return "empty"
	case repeatDecoding:
		return "decoding"
	case repeatTerminated:
		return "terminated"
	case repeatExhausted:
		return "exhausted"
	}
	return "unknown"
}

type repetition struct {
	entry *schema.Repeat
	state repeatState
	n     int // Elements decoded.
	count int // Fixed length, or -1 when Until decides.
}

// newRepetition starts a list. Count, if any, is evaluated against sc,
// the scope of the record owning the list.
func newRepetition(r *schema.Repeat, sc schema.State) (*repetition, error) {
	rp := &repetition{entry: r, count: -1}
	if r.Count != nil {
		n := r.Count(sc)
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count %d", ErrMismatch, n)
		}
		rp.count = int(n)
	}
	return rp, nil
}

// next reports whether another element follows, moving to a final state
// when none does.
func (rp *repetition) next() bool {
	switch rp.state {
	case repeatTerminated, repeatExhausted:
		return false
	}
	if rp.count >= 0 && rp.n >= rp.count {
		rp.state = repeatTerminated
		return false
	}
	if rp.entry.Max > 0 && rp.n >= rp.entry.Max {
		rp.state = repeatExhausted
		return false
	}
	rp.state = repeatDecoding
	return true
}

// done records a decoded element. elem is the element's own scope, so
// Until sees its temps as well as its stored fields.
func (rp *repetition) done(elem schema.State) {
	rp.n++
	if rp.count < 0 && rp.entry.Until(elem) {
		rp.state = repeatTerminated
	}
}

// checkLen validates the length of a list about to be encoded.
func (rp *repetition) checkLen(n int) error {
	if rp.count >= 0 && n != rp.count {
		return fmt.Errorf("%w: %d elements, count says %d", ErrMismatch, n, rp.count)
	}
	if rp.entry.Max > 0 && n > rp.entry.Max {
		return fmt.Errorf("%w: %d elements, limit is %d", ErrMismatch, n, rp.entry.Max)
	}
	return nil
}
