package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/norasector/nia/pkg/nia/device"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecording(t *testing.T, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.f32")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, Record(f, samples))
	require.NoError(t, f.Close())
	return path
}

func TestPlayback(t *testing.T) {
	recorded := []float64{-1, -0.5, 0, 0.25, 0.5, 1}
	path := writeRecording(t, recorded)

	h, err := NewFileSource(path, false).Open(context.Background(), 256)
	require.NoError(t, err)
	defer h.Close()

	first := make([]float64, 4)
	require.NoError(t, h.Read(first))
	assert.Equal(t, recorded[:4], first)

	empty := make([]float64, 0)
	require.NoError(t, h.Read(empty))

	rest := make([]float64, 3)
	err = h.Read(rest)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestPlaybackLoop(t *testing.T) {
	path := writeRecording(t, []float64{0.1, 0.2, 0.3})

	h, err := NewFileSource(path, true).Open(context.Background(), 256)
	require.NoError(t, err)
	defer h.Close()

	buf := make([]float64, 7)
	require.NoError(t, h.Read(buf))
	want := []float64{0.1, 0.2, 0.3, 0.1, 0.2, 0.3, 0.1}
	for i := range want {
		assert.InDelta(t, want[i], buf[i], 1e-7)
	}
}

func TestPlaybackLoopEmptyFile(t *testing.T) {
	path := writeRecording(t, nil)

	h, err := NewFileSource(path, true).Open(context.Background(), 256)
	require.NoError(t, err)
	defer h.Close()

	err = h.Read(make([]float64, 1))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.f32"), false).Open(context.Background(), 256)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestClosedHandle(t *testing.T) {
	path := writeRecording(t, []float64{1})
	h, err := NewFileSource(path, false).Open(context.Background(), 256)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.True(t, errors.Is(h.Read(make([]float64, 1)), device.ErrClosed))
}
