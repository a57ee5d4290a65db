package logging

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Level is a log severity. Higher values are more severe.
type Level int

const (
	TraceLevel    Level = 5
	DebugLevel    Level = 10
	InfoLevel     Level = 20
	WarningLevel  Level = 30
	ErrorLevel    Level = 40
	CriticalLevel Level = 50
)

// DefaultLevel is used when no valid level is supplied by any source.
const DefaultLevel = InfoLevel

var levelNames = map[Level]string{
	TraceLevel:    "TRACE",
	DebugLevel:    "DEBUG",
	InfoLevel:     "INFO",
	WarningLevel:  "WARNING",
	ErrorLevel:    "ERROR",
	CriticalLevel: "CRITICAL",
}

var levelsByName = map[string]Level{
	"TRACE":    TraceLevel,
	"DEBUG":    DebugLevel,
	"INFO":     InfoLevel,
	"WARNING":  WarningLevel,
	"ERROR":    ErrorLevel,
	"CRITICAL": CriticalLevel,
}

// Levels lists every valid level from least to most severe.
func Levels() []Level {
	return []Level{TraceLevel, DebugLevel, InfoLevel, WarningLevel, ErrorLevel, CriticalLevel}
}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "LEVEL(" + strconv.Itoa(int(l)) + ")"
}

// Valid reports whether l is one of the six known levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel parses a level name case-insensitively. Only the six canonical
// names are accepted; "warn" or "fatal" are not.
func ParseLevel(s string) (Level, bool) {
	l, ok := levelsByName[strings.ToUpper(strings.TrimSpace(s))]
	return l, ok
}

// zerolog maps the level onto the backend. CRITICAL is carried as FatalLevel
// and always emitted with WithLevel, so it never exits the process.
func (l Level) zerolog() zerolog.Level {
	switch l {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarningLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case CriticalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}

func levelFromZerolog(l zerolog.Level) (Level, bool) {
	switch l {
	case zerolog.TraceLevel:
		return TraceLevel, true
	case zerolog.DebugLevel:
		return DebugLevel, true
	case zerolog.InfoLevel:
		return InfoLevel, true
	case zerolog.WarnLevel:
		return WarningLevel, true
	case zerolog.ErrorLevel:
		return ErrorLevel, true
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return CriticalLevel, true
	default:
		return 0, false
	}
}

// ResolveLevel picks the effective level. Sources, highest precedence first:
// the explicit cli value, LOG_LEVEL from env, root.level from cfg, and
// finally DefaultLevel. Invalid values are skipped silently.
func ResolveLevel(cli string, env Environment, cfg *FileConfig) Level {
	if l, ok := ParseLevel(cli); ok {
		return l
	}
	if env != nil {
		if v, found := env.LookupEnv(EnvLogLevel); found {
			if l, ok := ParseLevel(v); ok {
				return l
			}
		}
	}
	if cfg != nil {
		if l, ok := ParseLevel(cfg.Root.Level); ok {
			return l
		}
	}
	return DefaultLevel
}

// handlerLevel returns the per-handler override from LOG_HANDLER_LEVEL_<NAME>
// when it holds a valid level, otherwise fallback.
func handlerLevel(env Environment, handler string, fallback Level) Level {
	if env == nil {
		return fallback
	}
	v, found := env.LookupEnv(EnvHandlerLevelPrefix + strings.ToUpper(handler))
	if !found {
		return fallback
	}
	if l, ok := ParseLevel(v); ok {
		return l
	}
	return fallback
}
