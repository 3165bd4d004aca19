package mock

import (
	"context"
	"testing"

	"github.com/norasector/nia/pkg/nia/device"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSamplesInRange(t *testing.T) {
	src := NewMockSource()
	h, err := src.Open(context.Background(), 256)
	require.NoError(t, err)

	buf := make([]float64, 4096)
	require.NoError(t, h.Read(buf))
	distinct := make(map[float64]struct{})
	for _, v := range buf {
		require.True(t, v >= -1.0 && v <= 1.0, "sample %v out of range", v)
		distinct[v] = struct{}{}
	}
	assert.Greater(t, len(distinct), 1)

	require.NoError(t, h.Close())
	assert.True(t, errors.Is(h.Read(buf), device.ErrClosed))
	assert.True(t, errors.Is(h.Close(), device.ErrClosed))
	assert.Equal(t, 1, src.Opens())
	assert.Equal(t, 1, src.Closes())
}

func TestMockFailOpen(t *testing.T) {
	src := NewMockSource()
	src.FailOpen = errors.New("sdk not loaded")

	h, err := src.Open(context.Background(), 256)
	assert.Nil(t, h)
	assert.EqualError(t, err, "sdk not loaded")
	assert.Equal(t, 0, src.Opens())
}
