package core

import "github.com/creastat/infra/telemetry"

// ServiceLocator is the optional service-locator collaborator spec.md §6
// mentions: "Engine construction with an optional service locator. When
// absent, the engine constructs a default one providing a logger."
type ServiceLocator interface {
	Logger() telemetry.Logger
}

// DefaultServiceLocator is the locator the engine builds for itself when
// none is supplied, providing a single default logger.
type DefaultServiceLocator struct {
	logger telemetry.Logger
}

// NewDefaultServiceLocator constructs a DefaultServiceLocator wrapping a
// default telemetry logger at info level.
func NewDefaultServiceLocator() *DefaultServiceLocator {
	return &DefaultServiceLocator{logger: telemetry.New(telemetry.Config{Level: "info"})}
}

// Logger implements ServiceLocator.
func (l *DefaultServiceLocator) Logger() telemetry.Logger {
	return l.logger
}
