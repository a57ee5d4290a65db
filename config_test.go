package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, "\n  \n"))
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("full config", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, `
version: 1
root:
  level: warning
  handlers: [out, json]
handlers:
  out:
    type: console
    stream: stderr
    level: ERROR
  json:
    filename: logs/app.jsonl
    level: DEBUG
`))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "warning", cfg.Root.Level)
		assert.Equal(t, []string{"out", "json"}, cfg.Root.Handlers)
		assert.Equal(t, HandlerTypeConsole, cfg.Handlers["out"].Kind())
		assert.Equal(t, "stderr", cfg.Handlers["out"].Stream)
		assert.Equal(t, HandlerTypeFile, cfg.Handlers["json"].Kind())
		assert.Equal(t, "logs/app.jsonl", cfg.Handlers["json"].Filename)
	})

	t.Run("root level only", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, "root:\n  level: DEBUG\n"))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "DEBUG", cfg.Root.Level)
		assert.Empty(t, cfg.Handlers)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		cfg, err := LoadConfig(writeFile(t, "root: [unclosed\n"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), errMsgConfigParse)
	})

	t.Run("not a mapping", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "- just\n- a list\n"))
		require.Error(t, err)
	})

	t.Run("invalid handler type", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "handlers:\n  sys:\n    type: syslog\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), errMsgConfigInvalid)
	})

	t.Run("invalid stream", func(t *testing.T) {
		_, err := LoadConfig(writeFile(t, "handlers:\n  out:\n    stream: printer\n"))
		require.Error(t, err)
	})
}

func TestValidateConfig_Nil(t *testing.T) {
	err := validateConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgNilConfig)
}

func TestFileConfig_ActiveHandlers(t *testing.T) {
	t.Run("all handlers sorted when root lists none", func(t *testing.T) {
		cfg := &FileConfig{Handlers: map[string]HandlerConfig{"b": {}, "a": {}}}
		names, err := cfg.activeHandlers()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, names)
	})

	t.Run("root selection", func(t *testing.T) {
		cfg := &FileConfig{
			Root:     RootConfig{Handlers: []string{"b"}},
			Handlers: map[string]HandlerConfig{"b": {}, "a": {}},
		}
		names, err := cfg.activeHandlers()
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names)
	})

	t.Run("unknown handler", func(t *testing.T) {
		cfg := &FileConfig{
			Root:     RootConfig{Handlers: []string{"missing"}},
			Handlers: map[string]HandlerConfig{"a": {}},
		}
		_, err := cfg.activeHandlers()
		require.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	names, err := cfg.activeHandlers()
	require.NoError(t, err)
	assert.Equal(t, []string{consoleHandlerName, fileHandlerName}, names)
	assert.Equal(t, HandlerTypeConsole, cfg.Handlers[consoleHandlerName].Kind())
	assert.Equal(t, HandlerTypeFile, cfg.Handlers[fileHandlerName].Kind())
	require.NoError(t, validateConfig(cfg))
}
