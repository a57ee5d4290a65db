package logging

// Logger is a named handle onto the shared logging backend. Every handle
// obtained from the same Service writes through the same sinks.
//
// The *With methods return a LogEvent for attaching an error before the
// message is written; the plain methods write msg directly.
type Logger interface {
	Name() string
	Enabled(level Level) bool

	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	CriticalWith() LogEvent

	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Critical(msg string)
	Log(level Level, msg string)
}
