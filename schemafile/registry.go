package schemafile

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// Registry caches compiled documents by the digest of their content, so
// loading the same file twice compiles it once. It is safe for
// concurrent use.
type Registry struct {
	lock   sync.RWMutex
	sets   map[[32]byte]*Set
	logger *slog.Logger
}

// NewRegistry returns an empty Registry. logger may be nil.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{sets: make(map[[32]byte]*Set), logger: logger}
}

func (r *Registry) log(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// Load reads and compiles the document at path, picking the format from
// its extension.
func (r *Registry) Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	set, err := r.Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse compiles data, or returns the Set compiled earlier from the same
// bytes in the same format.
func (r *Registry) Parse(data []byte, format Format) (*Set, error) {
	key := digest(data, format)
	r.lock.RLock()
	set, exists := r.sets[key]
	r.lock.RUnlock()
	if exists {
		r.log("schema document cached", "digest", fmt.Sprintf("%x", key[:8]))
		return set, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	// Double check.
	if set, exists = r.sets[key]; exists {
		return set, nil
	}
	set, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	r.sets[key] = set
	r.log("schema document compiled", "digest", fmt.Sprintf("%x", key[:8]), "types", len(set.types), "format", format)
	return set, nil
}

// Len returns the number of cached documents.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.sets)
}

func digest(data []byte, format Format) [32]byte {
	h := blake3.New()
	h.Write([]byte{byte(format)})
	h.Write(data)
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}
