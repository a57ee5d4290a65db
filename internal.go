package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// sink is one output destination. It receives the backend's encoded event,
// drops it when below its own level, and re-renders it with its formatter.
type sink struct {
	name      string
	kind      string
	level     Level
	formatter Formatter
	path      string

	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
}

var _ zerolog.LevelWriter = (*sink)(nil)

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// wireEvent is the shape of an event as encoded by the backend.
type wireEvent struct {
	Timestamp string `json:"timestamp"`
	Logger    string `json:"logger"`
	Message   string `json:"message"`
	Pathname  string `json:"pathname"`
	Lineno    int    `json:"lineno"`
	FuncName  string `json:"funcName"`
	ExcInfo   string `json:"exc_info"`
}

func (s *sink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.NoLevel, p)
}

func (s *sink) WriteLevel(zl zerolog.Level, p []byte) (int, error) {
	const op errors.Op = "logging.sink.WriteLevel"

	level, ok := levelFromZerolog(zl)
	if !ok || level < s.level {
		return len(p), nil
	}

	var ev wireEvent
	if err := json.Unmarshal(p, &ev); err != nil {
		return 0, errors.New(op).Err(err).Msg(errMsgFormatterFailed)
	}
	rec := Record{
		Timestamp: ev.Timestamp,
		Level:     level,
		Logger:    ev.Logger,
		Message:   ev.Message,
		Pathname:  ev.Pathname,
		Lineno:    ev.Lineno,
		FuncName:  ev.FuncName,
		ExcInfo:   ev.ExcInfo,
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	if err := s.formatter.Format(buf, &rec); err != nil {
		return 0, errors.New(op).Err(err).Msg(errMsgFormatterFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return len(p), nil
	}
	if _, err := s.out.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// newConsoleSink writes text lines to stdout or stderr.
func (s *Service) newConsoleSink(name string, hc HandlerConfig, level Level) *sink {
	out := s.stdout()
	if hc.Stream == "stderr" {
		out = s.stderr()
	}
	return &sink{
		name:      name,
		kind:      HandlerTypeConsole,
		level:     level,
		formatter: ConsoleFormatter{Color: useColor(hc.Color, out)},
		out:       out,
	}
}

// newFileSink opens the JSON lines file for appending, creating parent
// directories as needed. Failure here is fatal for initialization.
func (s *Service) newFileSink(name string, hc HandlerConfig, level Level, env Environment) (*sink, error) {
	const op errors.Op = "logging.Service.newFileSink"

	path := s.logPath(hc.Filename, env)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLogDir)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLogFile)
	}
	return &sink{
		name:      name,
		kind:      HandlerTypeFile,
		level:     level,
		formatter: JSONFormatter{},
		path:      path,
		out:       f,
		closer:    f,
	}, nil
}

// logPath resolves the file sink target: LOG_PATH, then the handler's
// filename, then DefaultLogPath. Relative paths are anchored at WorkingDir.
func (s *Service) logPath(filename string, env Environment) string {
	path := DefaultLogPath
	if filename != emptyString {
		path = filename
	}
	if env != nil {
		if v, ok := env.LookupEnv(EnvLogPath); ok && v != emptyString {
			path = v
		}
	}
	if !filepath.IsAbs(path) && s.WorkingDir != emptyString {
		path = filepath.Join(s.WorkingDir, path)
	}
	return path
}

func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "auto":
		f, ok := out.(*os.File)
		if !ok {
			return false
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	default:
		return false
	}
}
