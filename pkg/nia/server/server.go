package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/norasector/nia/pkg/nia"
	"github.com/norasector/nia/pkg/nia/viz"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Server exposes a single session over HTTP. The session is not safe for
// concurrent use, so every access goes through mu.
type Server struct {
	mu      sync.Mutex
	session *nia.Session
	plotter *viz.TimeDomainPlotter
	logger  zerolog.Logger

	pollInterval time.Duration
	pollSamples  int

	srv *http.Server
}

type Status struct {
	Connected    bool   `json:"connected"`
	SamplingRate int    `json:"sampling_rate"`
	Device       string `json:"device"`
	SamplesRead  int64  `json:"samples_read"`
}

type ServerOption func(s *Server)

// WithPoller reads numSamples every interval while connected and feeds the plot.
func WithPoller(interval time.Duration, numSamples int) ServerOption {
	return func(s *Server) {
		s.pollInterval = interval
		s.pollSamples = numSamples
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(port int, session *nia.Session, plotter *viz.TimeDomainPlotter, opts ...ServerOption) *Server {
	s := &Server{
		session: session,
		plotter: plotter,
		logger:  zerolog.Nop(),
		srv:     &http.Server{Addr: fmt.Sprintf(":%d", port)},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv.Handler = s.Handler()
	return s
}

func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/status", s.handleStatus)
	router.POST("/connect", s.handleConnect)
	router.POST("/disconnect", s.handleDisconnect)
	router.GET("/signal", s.handleSignal)
	router.GET("/plot.png", s.handlePlot)
	return router
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	if s.pollInterval > 0 {
		eg.Go(func() error {
			return s.poll(ctx)
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("serving NIA session")
		err := s.srv.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	return eg.Wait()
}

func (s *Server) poll(ctx context.Context) error {
	tick := time.NewTicker(s.pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			s.pollOnce()
		}
	}
}

func (s *Server) pollOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Connected() {
		return
	}
	samples, err := s.session.ReadSignal(s.pollSamples)
	if err != nil {
		s.logger.Warn().Err(err).Msg("poll read failed")
		return
	}
	if s.plotter != nil {
		s.plotter.Append(samples)
	}
}

func (s *Server) status() Status {
	return Status{
		Connected:    s.session.Connected(),
		SamplingRate: s.session.SamplingRate(),
		Device:       s.session.DeviceName(),
		SamplesRead:  s.session.SamplesRead(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	st := s.status()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	err := s.session.Connect(r.Context())
	st := s.status()
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	s.session.Disconnect()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n := nia.DefaultNumSamples
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid n %q", raw)})
			return
		}
		n = v
	}

	s.mu.Lock()
	samples, err := s.session.ReadSignal(n)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	if s.plotter != nil {
		s.plotter.Append(samples)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"samples": samples})
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.plotter == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	img, err := s.plotter.PNG()
	if err != nil {
		s.logger.Error().Err(err).Msg("error rendering plot")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Add("Content-Type", "image/png")
	w.Write(img)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case nia.IsConnectionFailure(err):
		code = http.StatusBadGateway
	case nia.IsNotConnected(err):
		code = http.StatusConflict
	case nia.IsInvalidArgument(err):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
