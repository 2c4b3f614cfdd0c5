// Package chunker splits page content into overlapping windows.
// Only the window offsets are produced; the ingestion pipeline slices
// the content itself, so no chunk text is ever copied or stored twice.
package chunker

import (
	"fmt"

	"github.com/ferndale-labs/marque/internal/core/domain"
)

// DefaultWindowSize is the default window length in bytes.
const DefaultWindowSize = 1024

// DefaultOverlapFraction is the default fraction of a window shared
// with its successor.
const DefaultOverlapFraction = 0.25

// Chunker produces overlapping content windows with a fixed size and
// overlap fraction. The zero value is not usable; construct with New so
// the configuration is validated once at startup.
type Chunker struct {
	windowSize int
	overlap    float64
	step       int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in bytes.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		c.windowSize = size
	}
}

// WithOverlapFraction sets the fraction of each window shared with the
// next window. Must be in [0, 1).
func WithOverlapFraction(f float64) Option {
	return func(c *Chunker) {
		c.overlap = f
	}
}

// New creates a chunker, rejecting configuration that could never
// terminate. A step below one byte (window too small or overlap too
// close to 1) would loop forever, so it is a startup error rather than
// a call-time check.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlapFraction,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d, must be positive", domain.ErrInvalidConfig, c.windowSize)
	}
	if c.overlap < 0 || c.overlap >= 1 {
		return nil, fmt.Errorf("%w: overlap fraction %g, must be in [0, 1)", domain.ErrInvalidConfig, c.overlap)
	}

	c.step = int(float64(c.windowSize) * (1 - c.overlap))
	if c.step < 1 {
		return nil, fmt.Errorf("%w: window size %d with overlap %g yields a zero step",
			domain.ErrInvalidConfig, c.windowSize, c.overlap)
	}

	return c, nil
}

// WindowSize returns the configured window size.
func (c *Chunker) WindowSize() int {
	return c.windowSize
}

// Step returns the distance between consecutive window starts.
func (c *Chunker) Step() int {
	return c.step
}

// Split returns the ordered windows covering content from offset 0 to
// len(content). The final window is clamped to the content length, so
// coverage is always exact. Empty content produces no windows.
func (c *Chunker) Split(content string) []domain.Window {
	length := len(content)
	if length == 0 {
		return nil
	}

	windows := make([]domain.Window, 0, length/c.step+1)
	for start := 0; start < length; start += c.step {
		end := start + c.windowSize
		if end > length {
			end = length
		}
		windows = append(windows, domain.Window{Start: start, End: end})
	}

	return windows
}
