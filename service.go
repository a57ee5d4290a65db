package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Service is the process-wide logging context. The entry point owns one
// Service and passes it to everything that logs. The backend is configured on
// first use and never reconfigured afterwards.
//
// The exported fields are read once, during initialization; set them before
// the first GetLogger, Initialize or convenience call.
type Service struct {
	// WorkingDir anchors .env, the config file and relative log paths.
	// Empty means the process working directory.
	WorkingDir string
	// ConfigPath overrides DefaultConfigPath.
	ConfigPath string
	// CLILevel is the command-line level override used by GetLogger.
	CLILevel string
	// Env overrides the process environment.
	Env    Environment
	Stdout io.Writer
	Stderr io.Writer
	// Clock overrides time.Now for event timestamps.
	Clock func() time.Time

	initMu      sync.Mutex
	lifecycle   sync.RWMutex
	initialized atomic.Bool
	closed      atomic.Bool
	initErr     error
	backend     atomic.Pointer[backend]
	defaultName atomic.String
	loggers     sync.Map
}

// backend is the effective configuration plus the wired sinks.
type backend struct {
	logger   zerolog.Logger
	level    Level
	minLevel Level
	sinks    []*sink
	config   *FileConfig
	env      Environment
	// fromFile is false when the built-in default layout is in use.
	fromFile bool
}

// sprintPool is a buffer pool for fmt.Sprint operations to reduce allocations
var sprintPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

func NewService() *Service {
	return &Service{}
}

// Initialize configures the backend if it has not been configured yet, using
// cliLevel (or CLILevel when empty) as the highest-precedence level. Later
// calls return the outcome of the first one.
func (s *Service) Initialize(cliLevel string) error {
	return s.initialize(cliLevel)
}

func (s *Service) initialize(cliLevel string) error {
	const op errors.Op = "logging.Service.initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}
	if s.initialized.Load() {
		return s.initErr
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized.Load() {
		return s.initErr
	}

	if cliLevel == emptyString {
		cliLevel = s.CLILevel
	}
	b, err := s.build(cliLevel)

	s.lifecycle.Lock()
	switch {
	case err != nil:
		s.initErr = err
		s.warnf("ERROR", "logging initialization failed: %v", err)
	case s.closed.Load():
		closeSinks(b.sinks)
		s.initErr = errors.New(op).Msg(errMsgServiceClosed)
	default:
		s.backend.Store(b)
	}
	s.initialized.Store(true)
	s.lifecycle.Unlock()

	return s.initErr
}

// build resolves the effective configuration and opens the sinks.
func (s *Service) build(cliLevel string) (*backend, error) {
	const op errors.Op = "logging.Service.build"

	env := s.environment()
	if overlay, err := DotEnv(s.dir(), env); err != nil {
		s.warnf("WARN", "ignoring .env: %v", err)
	} else {
		env = overlay
	}

	cfgPath := s.configPath()
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		s.warnf("WARN", "failed to load %s: %v; falling back to default handlers", cfgPath, err)
		cfg = nil
	}

	level := ResolveLevel(cliLevel, env, cfg)

	layout, fromFile := cfg, true
	if cfg == nil || len(cfg.Handlers) == 0 {
		layout, fromFile = defaultConfig(), false
	}
	names, err := layout.activeHandlers()
	if err != nil {
		s.warnf("WARN", "%v; falling back to default handlers", err)
		layout, fromFile = defaultConfig(), false
		names, _ = layout.activeHandlers()
	}

	// The resolved level always wins over levels written in the config.
	layout.Root.Level = level.String()
	sinks := make([]*sink, 0, len(names))
	for _, name := range names {
		hc := layout.Handlers[name]
		hl := handlerLevel(env, name, level)
		hc.Level = hl.String()
		layout.Handlers[name] = hc

		switch hc.Kind() {
		case HandlerTypeFile:
			fs, ferr := s.newFileSink(name, hc, hl, env)
			if ferr != nil {
				closeSinks(sinks)
				return nil, errors.New(op).Err(ferr).Msg(errMsgLogFile)
			}
			sinks = append(sinks, fs)
		default:
			sinks = append(sinks, s.newConsoleSink(name, hc, hl))
		}
	}
	if len(sinks) == 0 {
		return nil, errors.New(op).Msg(errMsgNoHandlers)
	}

	minLevel := sinks[0].level
	writers := make([]io.Writer, 0, len(sinks))
	for _, sk := range sinks {
		if sk.level < minLevel {
			minLevel = sk.level
		}
		writers = append(writers, sk)
	}

	s.defaultName.Store(s.detectDefaultName(env))

	return &backend{
		logger:   zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(minLevel.zerolog()),
		level:    level,
		minLevel: minLevel,
		sinks:    sinks,
		config:   layout,
		env:      env,
		fromFile: fromFile,
	}, nil
}

// GetLogger returns the logger called name, initializing the backend on first
// use with CLILevel as the command-line level. An empty name selects the
// default logger name. The error is non-nil only when initialization failed;
// the returned Logger is then a no-op.
func (s *Service) GetLogger(name string) (Logger, error) {
	if s == nil {
		return &noopLogger{name: name}, s.initialize(emptyString)
	}
	return s.GetLoggerWithLevel(name, s.CLILevel)
}

// GetLoggerWithLevel is GetLogger with an explicit command-line level. The
// level only matters if this call performs the initialization.
func (s *Service) GetLoggerWithLevel(name, cliLevel string) (Logger, error) {
	const op errors.Op = "logging.Service.GetLoggerWithLevel"
	if s == nil {
		return &noopLogger{name: name}, errors.New(op).Msg(errMsgNilService)
	}
	if s.closed.Load() {
		return &noopLogger{name: name}, errors.New(op).Msg(errMsgServiceClosed)
	}
	if err := s.initialize(cliLevel); err != nil {
		return &noopLogger{name: name}, err
	}
	return s.named(name), nil
}

func (s *Service) named(name string) *namedLogger {
	if name == emptyString {
		name = s.DefaultLoggerName()
	}
	if v, ok := s.loggers.Load(name); ok {
		return v.(*namedLogger)
	}
	v, _ := s.loggers.LoadOrStore(name, &namedLogger{name: name, service: s})
	return v.(*namedLogger)
}

// defaultLogger is the logger behind the convenience methods. It is nil when
// initialization failed.
func (s *Service) defaultLogger() *namedLogger {
	if s == nil || s.closed.Load() {
		return nil
	}
	if err := s.initialize(emptyString); err != nil {
		return nil
	}
	return s.named(emptyString)
}

// Close releases the sinks. Loggers obtained earlier become no-ops and the
// service cannot be initialized again. It's safe to call Close multiple times.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed.Swap(true) {
		return nil
	}
	b := s.backend.Swap(nil)
	if b == nil {
		return nil
	}
	return closeSinks(b.sinks)
}

func closeSinks(sinks []*sink) error {
	var first error
	for _, sk := range sinks {
		if err := sk.close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// EffectiveLevel returns the resolved global level, or DefaultLevel before
// initialization.
func (s *Service) EffectiveLevel() Level {
	if b := s.backend.Load(); b != nil {
		return b.level
	}
	return DefaultLevel
}

// EffectiveConfig returns the handler layout in use, with the resolved levels
// written into root and every handler. It is nil before initialization.
func (s *Service) EffectiveConfig() *FileConfig {
	if b := s.backend.Load(); b != nil {
		return b.config
	}
	return nil
}

// UsingConfigFile reports whether the handler layout came from the YAML
// config rather than the built-in default.
func (s *Service) UsingConfigFile() bool {
	b := s.backend.Load()
	return b != nil && b.fromFile
}

// SinkCount reports how many sinks are attached to the backend.
func (s *Service) SinkCount() int {
	if b := s.backend.Load(); b != nil {
		return len(b.sinks)
	}
	return 0
}

// LogPaths returns the file sink targets.
func (s *Service) LogPaths() []string {
	b := s.backend.Load()
	if b == nil {
		return nil
	}
	var paths []string
	for _, sk := range b.sinks {
		if sk.kind == HandlerTypeFile {
			paths = append(paths, sk.path)
		}
	}
	return paths
}

// DefaultLoggerName is the name used when a logger is requested without one:
// the working directory's base name, else PROJECT_NAME, else DefaultProjectName.
func (s *Service) DefaultLoggerName() string {
	if name := s.defaultName.Load(); name != emptyString {
		return name
	}
	return s.detectDefaultName(s.environment())
}

// environment returns the Environment seen by the backend, .env overlay
// included once initialized.
func (s *Service) environment() Environment {
	if b := s.backend.Load(); b != nil && b.env != nil {
		return b.env
	}
	if s.Env != nil {
		return s.Env
	}
	return OSEnv
}

func (s *Service) detectDefaultName(env Environment) string {
	dir := s.WorkingDir
	if dir == emptyString {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	if dir != emptyString {
		if abs, err := filepath.Abs(dir); err == nil {
			base := filepath.Base(abs)
			if base != "." && base != string(filepath.Separator) {
				return base
			}
		}
	}
	if env != nil {
		if v, ok := env.LookupEnv(EnvProjectName); ok && v != emptyString {
			return v
		}
	}
	return DefaultProjectName
}

func (s *Service) dir() string {
	if s.WorkingDir != emptyString {
		return s.WorkingDir
	}
	return "."
}

func (s *Service) configPath() string {
	path := DefaultConfigPath
	if s.ConfigPath != emptyString {
		path = s.ConfigPath
	}
	if !filepath.IsAbs(path) && s.WorkingDir != emptyString {
		path = filepath.Join(s.WorkingDir, path)
	}
	return path
}

func (s *Service) stdout() io.Writer {
	if s.Stdout != nil {
		return s.Stdout
	}
	return os.Stdout
}

func (s *Service) stderr() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// warnf reports problems that happen before or outside the sinks.
func (s *Service) warnf(tag, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.stderr(), tag+": "+format+"\n", args...)
}

// Convenience methods bound to the default logger.

func (s *Service) Trace(fields ...interface{}) { s.print(TraceLevel, fields...) }
func (s *Service) Debug(fields ...interface{}) { s.print(DebugLevel, fields...) }
func (s *Service) Info(fields ...interface{})  { s.print(InfoLevel, fields...) }
func (s *Service) Warn(fields ...interface{})  { s.print(WarningLevel, fields...) }
func (s *Service) Error(fields ...interface{}) { s.print(ErrorLevel, fields...) }

// Critical logs at CRITICAL. Unlike a fatal log it does not exit.
func (s *Service) Critical(fields ...interface{}) { s.print(CriticalLevel, fields...) }

func (s *Service) Tracef(format string, args ...interface{}) { s.printf(TraceLevel, format, args...) }
func (s *Service) Debugf(format string, args ...interface{}) { s.printf(DebugLevel, format, args...) }
func (s *Service) Infof(format string, args ...interface{})  { s.printf(InfoLevel, format, args...) }
func (s *Service) Warnf(format string, args ...interface{})  { s.printf(WarningLevel, format, args...) }
func (s *Service) Errorf(format string, args ...interface{}) { s.printf(ErrorLevel, format, args...) }
func (s *Service) Criticalf(format string, args ...interface{}) {
	s.printf(CriticalLevel, format, args...)
}

func (s *Service) print(level Level, fields ...interface{}) {
	l := s.defaultLogger()
	if l == nil || !l.Enabled(level) {
		return
	}

	buf := sprintPool.Get().(*strings.Builder)
	buf.Reset()
	defer sprintPool.Put(buf)

	fmt.Fprint(buf, fields...)
	l.emit(level, buf.String(), emptyString, 2)
}

func (s *Service) printf(level Level, format string, args ...interface{}) {
	l := s.defaultLogger()
	if l == nil || !l.Enabled(level) {
		return
	}
	l.emit(level, fmt.Sprintf(format, args...), emptyString, 2)
}
