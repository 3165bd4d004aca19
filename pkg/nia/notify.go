package nia

import (
	"github.com/rs/zerolog"
)

// Notifier receives the session's lifecycle and read events. Where they end
// up is the embedding application's decision.
type Notifier interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}

// LogNotifier forwards events to a zerolog logger.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *LogNotifier) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *LogNotifier) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *LogNotifier) Error(msg string, err error, fields map[string]interface{}) {
	l.logger.Error().Err(err).Fields(fields).Msg(msg)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Debug(string, map[string]interface{})        {}
func (NopNotifier) Info(string, map[string]interface{})         {}
func (NopNotifier) Warn(string, map[string]interface{})         {}
func (NopNotifier) Error(string, error, map[string]interface{}) {}
