package schema

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint is a BLAKE3 digest of a schema layout.
type Fingerprint [32]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 8 bytes in hex, enough to tell schemas apart
// in logs.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:8])
}

// fingerprintKey separates schema digests from any other BLAKE3 use.
var fingerprintKey = [32]byte{
	'b', 'i', 't', 'r', 'e', 'c', '.', 's', 'c', 'h', 'e', 'm', 'a', 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint digests the layout described by String. Predicates and
// expressions are Go functions and only their presence is covered, so two
// schemas differing only in a guard's logic share a fingerprint.
func (s *Schema) Fingerprint() Fingerprint {
	h, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		// Only possible with a key that is not 32 bytes.
		panic("schema: blake3 key: " + err.Error())
	}
	h.Write([]byte(s.String()))
	var f Fingerprint
	copy(f[:], h.Sum(nil))
	return f
}
