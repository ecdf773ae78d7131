package internal

import (
	"time"

	"github.com/fiorelli/daytrip/internal/narration"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	engine narration.Engine
	clock  func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithNarrationEngine sets the text-to-speech engine. Without one the
// audio-guide session runs in degraded silent mode.
func WithNarrationEngine(engine narration.Engine) Option {
	return func(a *application) {
		a.engine = engine
	}
}

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.clock = now
	}
}
