package logger

// Logger is the minimal logging surface used across the service.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Infow logs a message with structured fields.
	Infow(msg string, fields map[string]any)
}

// Nop discards all log output. Used as the default in tests.
type Nop struct{}

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(string, ...any)        {}
func (Nop) Infow(string, map[string]any) {}

// New returns the default Logger for a component. Output format is
// chosen from the APP_ENV environment variable, verbosity from
// LOG_LEVEL.
func New(component string) Logger {
	return NewZerolog(component)
}
