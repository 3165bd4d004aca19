package file

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/norasector/nia/pkg/nia/device"
	"github.com/pkg/errors"
)

const bytesPerSample = 4

// FileSource plays back a recording of little-endian float32 samples.
type FileSource struct {
	path string
	loop bool
}

func NewFileSource(path string, loop bool) *FileSource {
	return &FileSource{path: path, loop: loop}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Open(ctx context.Context, sampleRate int) (device.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	readFile, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening recording %s", f.path)
	}

	return &fileHandle{
		readFile: readFile,
		reader:   bufio.NewReader(readFile),
		loop:     f.loop,
	}, nil
}

type fileHandle struct {
	readFile *os.File
	reader   *bufio.Reader
	loop     bool
	buf      [bytesPerSample]byte
	closed   bool
}

func (h *fileHandle) Read(dst []float64) error {
	if h.closed {
		return device.ErrClosed
	}
	for i := range dst {
		v, err := h.next()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (h *fileHandle) next() (float64, error) {
	rewound := false
	for {
		_, err := io.ReadFull(h.reader, h.buf[:])
		switch {
		case err == nil:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(h.buf[:]))), nil
		case (err == io.EOF || err == io.ErrUnexpectedEOF) && h.loop && !rewound:
			// A trailing partial sample is dropped on rewind.
			if _, err := h.readFile.Seek(0, io.SeekStart); err != nil {
				return 0, errors.WithStack(err)
			}
			h.reader.Reset(h.readFile)
			rewound = true
		case err == io.EOF:
			return 0, io.ErrUnexpectedEOF
		default:
			return 0, errors.WithStack(err)
		}
	}
}

func (h *fileHandle) Close() error {
	if h.closed {
		return device.ErrClosed
	}
	h.closed = true
	return h.readFile.Close()
}

// Record writes samples to w in the format FileSource plays back.
func Record(w io.Writer, samples []float64) error {
	buf := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*bytesPerSample:], math.Float32bits(float32(s)))
	}
	_, err := w.Write(buf)
	return errors.WithStack(err)
}
