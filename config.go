package logging

import (
	"bytes"
	"os"
	"sort"

	"github.com/Station-Manager/errors"
	"gopkg.in/yaml.v3"
)

// Handler kinds accepted in the YAML config.
const (
	HandlerTypeConsole = "console"
	HandlerTypeFile    = "file"
)

// FileConfig is the optional declarative logging config, usually read from
// config/logging.yml:
//
//	root:
//	  level: INFO
//	  handlers: [console, file]
//	handlers:
//	  console:
//	    type: console
//	    stream: stdout
//	  file:
//	    type: file
//	    filename: logs/dev.log
type FileConfig struct {
	Version  int                      `yaml:"version"`
	Root     RootConfig               `yaml:"root"`
	Handlers map[string]HandlerConfig `yaml:"handlers" validate:"omitempty,dive"`
}

// RootConfig holds the root logger settings.
type RootConfig struct {
	Level string `yaml:"level"`
	// Handlers names the handlers attached to the root. Empty means all.
	Handlers []string `yaml:"handlers"`
}

// HandlerConfig describes one sink.
type HandlerConfig struct {
	// Type is console or file. When empty it is inferred: a handler with a
	// filename is a file handler, anything else writes to the console.
	Type     string `yaml:"type" validate:"omitempty,oneof=console file"`
	Level    string `yaml:"level"`
	Stream   string `yaml:"stream" validate:"omitempty,oneof=stdout stderr"`
	Filename string `yaml:"filename"`
	Color    string `yaml:"color" validate:"omitempty,oneof=auto always never"`
}

// Kind returns the handler type, inferring it when Type is empty.
func (h HandlerConfig) Kind() string {
	if h.Type != emptyString {
		return h.Type
	}
	if h.Filename != emptyString {
		return HandlerTypeFile
	}
	return HandlerTypeConsole
}

// LoadConfig reads the YAML config at path. A missing or empty file yields a
// nil config and no error. Read, parse and validation failures are errors;
// callers are expected to degrade to the built-in defaults.
func LoadConfig(path string) (*FileConfig, error) {
	const op errors.Op = "logging.LoadConfig"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(op).Err(err).Msg(errMsgConfigRead)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var cfg FileConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigParse)
	}
	if err = validateConfig(&cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}
	return &cfg, nil
}

// activeHandlers returns the handler names attached to the root, sorted when
// root.handlers does not impose an order.
func (c *FileConfig) activeHandlers() ([]string, error) {
	const op errors.Op = "logging.FileConfig.activeHandlers"
	if len(c.Root.Handlers) > 0 {
		for _, name := range c.Root.Handlers {
			if _, ok := c.Handlers[name]; !ok {
				return nil, errors.New(op).Msg(errMsgUnknownHandler + " (" + name + ")")
			}
		}
		return c.Root.Handlers, nil
	}
	names := make([]string, 0, len(c.Handlers))
	for name := range c.Handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// defaultConfig is the built-in two-sink layout: console text on stdout and
// JSON lines in the log file.
func defaultConfig() *FileConfig {
	return &FileConfig{
		Version: 1,
		Root: RootConfig{
			Handlers: []string{consoleHandlerName, fileHandlerName},
		},
		Handlers: map[string]HandlerConfig{
			consoleHandlerName: {Type: HandlerTypeConsole, Stream: "stdout"},
			fileHandlerName:    {Type: HandlerTypeFile},
		},
	}
}
