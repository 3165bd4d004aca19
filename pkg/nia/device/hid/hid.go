package hid

import (
	"context"
	"io"
	"os"

	"github.com/norasector/nia/pkg/nia/device"
	"github.com/pkg/errors"
)

const (
	// DefaultPath is the first hidraw node, where a lone NIA enumerates.
	DefaultPath = "/dev/hidraw0"

	reportSize       = 55
	maxReportSamples = 16
	sampleWidth      = 3
	countOffset      = 54

	halfScale = 1 << 23
)

var ErrMalformedReport = errors.New("malformed NIA report")

// Opener opens the raw HID node. Tests replace it.
type Opener func(path string) (io.ReadCloser, error)

func openHidraw(path string) (io.ReadCloser, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

// HIDSource reads input reports from the NIA through a hidraw node.
type HIDSource struct {
	path string
	open Opener
}

func NewHIDSource(path string) *HIDSource {
	if path == "" {
		path = DefaultPath
	}
	return &HIDSource{path: path, open: openHidraw}
}

// WithOpener replaces how the hidraw node is opened.
func (s *HIDSource) WithOpener(open Opener) *HIDSource {
	s.open = open
	return s
}

func (s *HIDSource) Name() string {
	return "hid"
}

func (s *HIDSource) Open(ctx context.Context, sampleRate int) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.path)
	}
	return &hidHandle{dev: rc}, nil
}

type hidHandle struct {
	dev     io.ReadCloser
	report  [reportSize]byte
	decoded [maxReportSamples]float64
	pending []float64
	closed  bool
}

func (h *hidHandle) Read(dst []float64) error {
	if h.closed {
		return device.ErrClosed
	}
	n := 0
	for n < len(dst) {
		if len(h.pending) == 0 {
			if err := h.fill(); err != nil {
				return err
			}
			continue
		}
		c := copy(dst[n:], h.pending)
		h.pending = h.pending[c:]
		n += c
	}
	return nil
}

// fill reads one report into pending. Reports with no samples leave it empty.
func (h *hidHandle) fill() error {
	if _, err := io.ReadFull(h.dev, h.report[:]); err != nil {
		return errors.Wrap(err, "reading NIA report")
	}
	samples, err := DecodeReport(h.report[:], h.decoded[:0])
	if err != nil {
		return err
	}
	h.pending = samples
	return nil
}

func (h *hidHandle) Close() error {
	if h.closed {
		return device.ErrClosed
	}
	h.closed = true
	return h.dev.Close()
}

// DecodeReport appends the samples carried by one NIA input report to dst,
// normalized to [-1.0, 1.0).
func DecodeReport(report []byte, dst []float64) ([]float64, error) {
	if len(report) != reportSize {
		return dst, errors.Wrapf(ErrMalformedReport, "size %d", len(report))
	}
	count := int(report[countOffset])
	if count > maxReportSamples {
		return dst, errors.Wrapf(ErrMalformedReport, "sample count %d", count)
	}
	for i := 0; i < count; i++ {
		b := report[i*sampleWidth : (i+1)*sampleWidth]
		raw := int(b[0]) | int(b[1])<<8 | int(b[2])<<16
		dst = append(dst, float64(raw)/halfScale-1)
	}
	return dst, nil
}
