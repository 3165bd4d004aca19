package device

import (
	"context"

	"github.com/pkg/errors"
)

// ErrClosed is returned by a Handle used after Close.
var ErrClosed = errors.New("device handle closed")

// Source acquires raw samples from a sensor. Open is the acquisition step of
// a session connect; the returned Handle is owned by the caller until closed.
type Source interface {
	Name() string
	Open(ctx context.Context, sampleRate int) (Handle, error)
}

// Handle is an open acquisition channel to a device.
type Handle interface {
	// Read fills dst completely or returns an error.
	Read(dst []float64) error
	Close() error
}
