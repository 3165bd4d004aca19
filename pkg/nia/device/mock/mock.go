package mock

import (
	"context"
	"sync/atomic"

	"github.com/norasector/nia/pkg/nia/device"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	minSample = -1.0
	maxSample = 1.0
)

// MockSource stands in for the NIA hardware. Every sample is drawn
// independently from the uniform range [-1.0, 1.0].
type MockSource struct {
	// FailOpen, when set, is returned by Open instead of a handle.
	FailOpen error

	opens  int32
	closes int32
}

func NewMockSource() *MockSource {
	return &MockSource{}
}

func (m *MockSource) Name() string {
	return "mock"
}

func (m *MockSource) Open(ctx context.Context, sampleRate int) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FailOpen != nil {
		return nil, m.FailOpen
	}
	atomic.AddInt32(&m.opens, 1)

	return &mockHandle{
		source: m,
		dist:   distuv.Uniform{Min: minSample, Max: maxSample},
	}, nil
}

// Opens reports how many handles have been handed out.
func (m *MockSource) Opens() int {
	return int(atomic.LoadInt32(&m.opens))
}

// Closes reports how many handles have been released.
func (m *MockSource) Closes() int {
	return int(atomic.LoadInt32(&m.closes))
}

type mockHandle struct {
	source *MockSource
	dist   distuv.Uniform
	closed bool
}

func (h *mockHandle) Read(dst []float64) error {
	if h.closed {
		return device.ErrClosed
	}
	for i := range dst {
		dst[i] = h.dist.Rand()
	}
	return nil
}

func (h *mockHandle) Close() error {
	if h.closed {
		return device.ErrClosed
	}
	h.closed = true
	atomic.AddInt32(&h.source.closes, 1)
	return nil
}
