// Package codec defines how the pipeline reaches the per-dialect readers
// and writers of hand-record text, and ships a passthrough codec that
// covers every format without interpreting it fully.
package codec

import (
	"errors"
	"sync"

	"github.com/data-bridge/bridgeflow/internal/format"
	"github.com/data-bridge/bridgeflow/internal/record"
)

// ErrUnsupported is returned for a conversion a codec cannot perform.
var ErrUnsupported = errors.New("conversion not supported")

// Decoder turns a hand-record file into the record model.
type Decoder interface {
	Decode(path string, f format.Format) (*record.Tournament, error)
}

// Encoder renders the record model as text of format f.
type Encoder interface {
	Encode(t *record.Tournament, f format.Format) (string, error)
}

// Codec is both directions for one or more formats.
type Codec interface {
	Decoder
	Encoder
}

// Registry selects the codec of a format, falling back to a default.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	codecs   map[format.Format]Codec
	fallback Codec
}

// NewRegistry returns a registry that answers every unregistered format
// with fallback.
func NewRegistry(fallback Codec) *Registry {
	return &Registry{codecs: make(map[format.Format]Codec), fallback: fallback}
}

// Default is a registry backed by [Passthrough].
func Default() *Registry { return NewRegistry(Passthrough{}) }

// Register installs c for f.
func (r *Registry) Register(f format.Format, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[f] = c
}

// For returns the codec of f.
func (r *Registry) For(f format.Format) Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.codecs[f]; ok {
		return c
	}
	return r.fallback
}

// Decode implements [Decoder] by dispatching on f.
func (r *Registry) Decode(path string, f format.Format) (*record.Tournament, error) {
	return r.For(f).Decode(path, f)
}

// Encode implements [Encoder] by dispatching on f.
func (r *Registry) Encode(t *record.Tournament, f format.Format) (string, error) {
	return r.For(f).Encode(t, f)
}
