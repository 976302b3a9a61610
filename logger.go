package mqtt

import "log"

// Logger is the minimal logging surface the engine and transports use.
// The standard library logger and most structured loggers adapt to it in
// a few lines.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. It is the default.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// StdLogger writes to a standard library log.Logger with a level prefix.
type StdLogger struct {
	L *log.Logger
}

// NewStdLogger wraps the default standard library logger.
func NewStdLogger() *StdLogger {
	return &StdLogger{L: log.Default()}
}

func (s *StdLogger) Debugf(format string, args ...any) { s.L.Printf("DEBUG "+format, args...) }
func (s *StdLogger) Infof(format string, args ...any)  { s.L.Printf("INFO  "+format, args...) }
func (s *StdLogger) Warnf(format string, args ...any)  { s.L.Printf("WARN  "+format, args...) }
func (s *StdLogger) Errorf(format string, args ...any) { s.L.Printf("ERROR "+format, args...) }
