package hid

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReport(raw ...int) []byte {
	report := make([]byte, reportSize)
	for i, v := range raw {
		report[i*sampleWidth] = byte(v)
		report[i*sampleWidth+1] = byte(v >> 8)
		report[i*sampleWidth+2] = byte(v >> 16)
	}
	report[countOffset] = byte(len(raw))
	return report
}

func TestDecodeReport(t *testing.T) {
	tests := []struct {
		name   string
		report []byte
		want   []float64
	}{
		{"empty", makeReport(), nil},
		{"min", makeReport(0), []float64{-1}},
		{"mid", makeReport(1 << 23), []float64{0}},
		{"quarter", makeReport(3 << 21), []float64{-0.25}},
		{"max", makeReport(1<<24 - 1), []float64{1 - 1.0/(1<<23)}},
		{"several", makeReport(0, 1<<23, 1<<22), []float64{-1, 0, -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeReport(tt.report, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeReportMalformed(t *testing.T) {
	_, err := DecodeReport(make([]byte, 10), nil)
	assert.True(t, errors.Is(err, ErrMalformedReport))

	report := makeReport()
	report[countOffset] = maxReportSamples + 1
	_, err = DecodeReport(report, nil)
	assert.True(t, errors.Is(err, ErrMalformedReport))
}

func TestReadAcrossReports(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(makeReport(0, 1<<23, 1<<22))
	stream.Write(makeReport())
	stream.Write(makeReport(1<<23, 0))

	var openedPath string
	src := NewHIDSource("/dev/hidraw7").WithOpener(func(path string) (io.ReadCloser, error) {
		openedPath = path
		return ioutil.NopCloser(&stream), nil
	})
	h, err := src.Open(context.Background(), 256)
	require.NoError(t, err)
	assert.Equal(t, "/dev/hidraw7", openedPath)

	first := make([]float64, 2)
	require.NoError(t, h.Read(first))
	assert.Equal(t, []float64{-1, 0}, first)

	second := make([]float64, 3)
	require.NoError(t, h.Read(second))
	assert.Equal(t, []float64{-0.5, 0, -1}, second)

	err = h.Read(make([]float64, 1))
	assert.True(t, errors.Is(err, io.EOF))
	require.NoError(t, h.Close())
}

func TestOpenFailure(t *testing.T) {
	src := NewHIDSource("").WithOpener(func(path string) (io.ReadCloser, error) {
		return nil, errors.Errorf("open %s: permission denied", path)
	})
	_, err := src.Open(context.Background(), 256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultPath)
}
