package nia

import (
	"context"

	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/nia/pkg/nia/device"
	"github.com/pkg/errors"
)

const (
	DefaultSamplingRate = 256
	DefaultNumSamples   = 1
)

// Session is one logical connection to an NIA sensor. It is either
// disconnected (no handle) or connected (holding the handle returned by its
// source).
//
// A Session is not safe for concurrent use. Its owner calls Connect,
// ReadSignal and Disconnect in sequence and never overlaps them; callers
// sharing a session must synchronize externally.
type Session struct {
	source       device.Source
	samplingRate int
	notifier     Notifier
	writeAPI     api.WriteAPI

	handle      device.Handle
	samplesRead int64
}

type SessionOption func(s *Session) error

func WithSamplingRate(rate int) SessionOption {
	return func(s *Session) error {
		if rate <= 0 {
			return errors.Wrapf(ErrInvalidArgument, "sampling rate must be positive, got %d", rate)
		}
		s.samplingRate = rate
		return nil
	}
}

func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) error {
		if n == nil {
			return errors.Wrap(ErrInvalidArgument, "nil notifier")
		}
		s.notifier = n
		return nil
	}
}

func WithInfluxDB(writeAPI api.WriteAPI) SessionOption {
	return func(s *Session) error {
		if writeAPI == nil {
			return errors.Wrap(ErrInvalidArgument, "nil write API")
		}
		s.writeAPI = writeAPI
		return nil
	}
}

// NewSession creates a disconnected session reading from src.
func NewSession(src device.Source, opts ...SessionOption) (*Session, error) {
	if src == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil signal source")
	}
	s := &Session{
		source:       src,
		samplingRate: DefaultSamplingRate,
		notifier:     NopNotifier{},
		writeAPI:     nopWriteAPI{},
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) Connected() bool {
	return s.handle != nil
}

func (s *Session) SamplingRate() int {
	return s.samplingRate
}

func (s *Session) DeviceName() string {
	return s.source.Name()
}

// SamplesRead is the number of samples returned since construction.
func (s *Session) SamplesRead() int64 {
	return s.samplesRead
}

// Connect acquires a handle from the signal source. A nil error means the
// session is connected. On failure the error matches ErrConnectionFailure and
// the session stays disconnected.
func (s *Session) Connect(ctx context.Context) error {
	fields := map[string]interface{}{
		"device":        s.source.Name(),
		"sampling_rate": s.samplingRate,
	}
	if s.Connected() {
		s.notifier.Warn("NIA device already connected", fields)
		return nil
	}

	s.notifier.Info("attempting to connect to NIA device", fields)
	handle, err := s.source.Open(ctx, s.samplingRate)
	if err == nil && handle == nil {
		err = errors.New("source returned no handle")
	}
	if err != nil {
		cerr := &connectionError{device: s.source.Name(), cause: err}
		s.notifier.Error("failed to connect to NIA device", cerr, fields)
		s.writePoint(measurementConnect, map[string]interface{}{"success": false})
		return maskAny(cerr)
	}

	s.handle = handle
	s.notifier.Info("NIA device connected", fields)
	s.writePoint(measurementConnect, map[string]interface{}{"success": true})
	return nil
}

// Read returns a single sample.
func (s *Session) Read() ([]float64, error) {
	return s.ReadSignal(DefaultNumSamples)
}

// ReadSignal returns exactly numSamples raw samples from the device. It fails
// with ErrNotConnected outside the connected state and ErrInvalidArgument for
// a negative count.
func (s *Session) ReadSignal(numSamples int) ([]float64, error) {
	if !s.Connected() {
		return nil, errors.Wrap(ErrNotConnected, "cannot read signal, call Connect first")
	}
	if numSamples < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "num_samples must be >= 0, got %d", numSamples)
	}

	s.notifier.Debug("reading samples from NIA", map[string]interface{}{
		"num_samples": numSamples,
	})
	samples := make([]float64, numSamples)
	if err := s.handle.Read(samples); err != nil {
		return nil, errors.Wrapf(err, "reading %d samples from %s device", numSamples, s.source.Name())
	}

	s.samplesRead += int64(numSamples)
	s.writePoint(measurementRead, map[string]interface{}{
		"samples_read": numSamples,
	})
	return samples, nil
}

// Disconnect releases the device handle. It never fails: disconnecting a
// disconnected session only emits a warning, and a close error is reported
// through the notifier while the session still ends up disconnected.
func (s *Session) Disconnect() {
	fields := map[string]interface{}{
		"device": s.source.Name(),
	}
	if !s.Connected() {
		s.notifier.Warn("attempted to disconnect an already disconnected NIA device", fields)
		return
	}

	s.notifier.Info("disconnecting from NIA device", fields)
	handle := s.handle
	s.handle = nil
	if err := handle.Close(); err != nil {
		s.notifier.Error("error releasing NIA device handle", err, fields)
	}
	s.notifier.Info("NIA device disconnected", fields)
	s.writePoint(measurementDisconnect, map[string]interface{}{
		"samples_read": s.samplesRead,
	})
}
