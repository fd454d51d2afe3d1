package services

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceLogger binds a "service" field to every event so log lines can be
// traced back to the component that emitted them.
type ServiceLogger struct {
	logger zerolog.Logger
}

func NewServiceLogger(service string) *ServiceLogger {
	return &ServiceLogger{
		logger: log.With().Str("service", service).Logger(),
	}
}

func (l *ServiceLogger) Info() *zerolog.Event {
	return l.logger.Info()
}

func (l *ServiceLogger) Error() *zerolog.Event {
	return l.logger.Error()
}

func (l *ServiceLogger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

func (l *ServiceLogger) Debug() *zerolog.Event {
	return l.logger.Debug()
}
