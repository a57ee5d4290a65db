package logging

import "fmt"

// LogEvent is a pending log line. Nothing is written until Msg, Msgf or Send
// is called. Events for disabled levels are no-ops.
type LogEvent interface {
	// Err attaches err; its cause chain is rendered into exc_info.
	Err(err error) LogEvent
	// Stack attaches pre-rendered exception text as exc_info.
	Stack(trace string) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent. A nil logger makes every method a no-op.
type logEvent struct {
	logger *namedLogger
	level  Level
	exc    string
}

func newLogEvent(l *namedLogger, level Level) LogEvent {
	if l == nil || !l.Enabled(level) {
		return &logEvent{}
	}
	return &logEvent{logger: l, level: level}
}

func (e *logEvent) Err(err error) LogEvent {
	if e.logger != nil && err != nil {
		e.exc = formatException(err)
	}
	return e
}

func (e *logEvent) Stack(trace string) LogEvent {
	if e.logger != nil {
		e.exc = trace
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	if e.logger != nil {
		e.logger.emit(e.level, msg, e.exc, 1)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.logger != nil {
		e.logger.emit(e.level, fmt.Sprintf(format, v...), e.exc, 1)
	}
}

func (e *logEvent) Send() {
	if e.logger != nil {
		e.logger.emit(e.level, emptyString, e.exc, 1)
	}
}

// namedLogger is the Logger handed out by Service.
type namedLogger struct {
	name    string
	service *Service
}

func (l *namedLogger) Name() string { return l.name }

func (l *namedLogger) Enabled(level Level) bool {
	b := l.service.backend.Load()
	return b != nil && level.Valid() && level >= b.minLevel
}

func (l *namedLogger) TraceWith() LogEvent    { return newLogEvent(l, TraceLevel) }
func (l *namedLogger) DebugWith() LogEvent    { return newLogEvent(l, DebugLevel) }
func (l *namedLogger) InfoWith() LogEvent     { return newLogEvent(l, InfoLevel) }
func (l *namedLogger) WarnWith() LogEvent     { return newLogEvent(l, WarningLevel) }
func (l *namedLogger) ErrorWith() LogEvent    { return newLogEvent(l, ErrorLevel) }
func (l *namedLogger) CriticalWith() LogEvent { return newLogEvent(l, CriticalLevel) }

func (l *namedLogger) Trace(msg string)    { l.emit(TraceLevel, msg, emptyString, 1) }
func (l *namedLogger) Debug(msg string)    { l.emit(DebugLevel, msg, emptyString, 1) }
func (l *namedLogger) Info(msg string)     { l.emit(InfoLevel, msg, emptyString, 1) }
func (l *namedLogger) Warn(msg string)     { l.emit(WarningLevel, msg, emptyString, 1) }
func (l *namedLogger) Error(msg string)    { l.emit(ErrorLevel, msg, emptyString, 1) }
func (l *namedLogger) Critical(msg string) { l.emit(CriticalLevel, msg, emptyString, 1) }

func (l *namedLogger) Log(level Level, msg string) {
	if !level.Valid() {
		return
	}
	l.emit(level, msg, emptyString, 1)
}

// emit writes one event. depth counts the frames between emit's caller and
// the user code whose location is recorded.
func (l *namedLogger) emit(level Level, msg, exc string, depth int) {
	s := l.service
	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()

	b := s.backend.Load()
	if b == nil || level < b.minLevel {
		return
	}
	ev := b.logger.WithLevel(level.zerolog())
	if ev == nil {
		return
	}

	file, line, fn := callerInfo(depth + 1)
	ev.Str("timestamp", s.now().Format(timestampLayout)).
		Str("logger", l.name).
		Str("pathname", file).
		Int("lineno", line).
		Str("funcName", fn)
	if exc != emptyString {
		ev.Str("exc_info", exc)
	}
	ev.Msg(msg)
}

// noopLogger is returned when the service could not be initialized.
type noopLogger struct {
	name string
}

func (n *noopLogger) Name() string           { return n.name }
func (n *noopLogger) Enabled(Level) bool     { return false }
func (n *noopLogger) TraceWith() LogEvent    { return &logEvent{} }
func (n *noopLogger) DebugWith() LogEvent    { return &logEvent{} }
func (n *noopLogger) InfoWith() LogEvent     { return &logEvent{} }
func (n *noopLogger) WarnWith() LogEvent     { return &logEvent{} }
func (n *noopLogger) ErrorWith() LogEvent    { return &logEvent{} }
func (n *noopLogger) CriticalWith() LogEvent { return &logEvent{} }
func (n *noopLogger) Trace(string)           {}
func (n *noopLogger) Debug(string)           {}
func (n *noopLogger) Info(string)            {}
func (n *noopLogger) Warn(string)            {}
func (n *noopLogger) Error(string)           {}
func (n *noopLogger) Critical(string)        {}
func (n *noopLogger) Log(Level, string)      {}
