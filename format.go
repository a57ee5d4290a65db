package logging

import (
	"bytes"
	"encoding/json"
)

// Record is one log event as seen by the formatters.
type Record struct {
	Timestamp string
	Level     Level
	Logger    string
	Message   string
	Pathname  string
	Lineno    int
	FuncName  string
	// ExcInfo carries the rendered error chain; empty when no error was attached.
	ExcInfo string
}

// Formatter renders a Record, including the trailing newline, into buf.
type Formatter interface {
	Format(buf *bytes.Buffer, r *Record) error
}

// ConsoleFormatter renders "[<timestamp>] [<LEVEL>] <logger> - <message>".
type ConsoleFormatter struct {
	// Color wraps the level name in ANSI colors.
	Color bool
}

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorBoldRed = "\x1b[1;31m"
)

func levelColor(l Level) string {
	switch l {
	case TraceLevel:
		return colorMagenta
	case DebugLevel:
		return colorCyan
	case InfoLevel:
		return colorGreen
	case WarningLevel:
		return colorYellow
	case ErrorLevel:
		return colorRed
	default:
		return colorBoldRed
	}
}

func (f ConsoleFormatter) Format(buf *bytes.Buffer, r *Record) error {
	buf.WriteByte('[')
	buf.WriteString(r.Timestamp)
	buf.WriteString("] [")
	if f.Color {
		buf.WriteString(levelColor(r.Level))
		buf.WriteString(r.Level.String())
		buf.WriteString(colorReset)
	} else {
		buf.WriteString(r.Level.String())
	}
	buf.WriteString("] ")
	buf.WriteString(r.Logger)
	buf.WriteString(" - ")
	buf.WriteString(r.Message)
	if r.ExcInfo != emptyString {
		buf.WriteByte('\n')
		buf.WriteString(r.ExcInfo)
	}
	buf.WriteByte('\n')
	return nil
}

// JSONFormatter renders one JSON object per line.
type JSONFormatter struct{}

// jsonRecord fixes the key set and order of a file line.
type jsonRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Logger    string `json:"logger"`
	Message   string `json:"message"`
	Pathname  string `json:"pathname"`
	Lineno    int    `json:"lineno"`
	FuncName  string `json:"funcName"`
	ExcInfo   string `json:"exc_info,omitempty"`
}

func (JSONFormatter) Format(buf *bytes.Buffer, r *Record) error {
	enc := json.NewEncoder(buf)
	// Keep <, > and & literal; non-ASCII is never escaped by encoding/json.
	enc.SetEscapeHTML(false)
	// Encode appends the newline.
	return enc.Encode(jsonRecord{
		Timestamp: r.Timestamp,
		Level:     r.Level.String(),
		Logger:    r.Logger,
		Message:   r.Message,
		Pathname:  r.Pathname,
		Lineno:    r.Lineno,
		FuncName:  r.FuncName,
		ExcInfo:   r.ExcInfo,
	})
}
