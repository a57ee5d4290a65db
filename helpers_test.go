package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// threadSafeBuffer is a simple thread-safe buffer for capturing log output.
type threadSafeBuffer struct {
	bytes.Buffer
	sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.String()
}

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

// newTestService builds a Service rooted in a temp dir with captured
// stdout/stderr and a fixed environment.
func newTestService(t testing.TB, env MapEnv) (*Service, *threadSafeBuffer, *threadSafeBuffer) {
	t.Helper()
	stdout, stderr := &threadSafeBuffer{}, &threadSafeBuffer{}
	if env == nil {
		env = MapEnv{}
	}
	svc := &Service{
		WorkingDir: t.TempDir(),
		Env:        env,
		Stdout:     stdout,
		Stderr:     stderr,
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, stdout, stderr
}

func writeConfig(t testing.TB, wd, body string) {
	t.Helper()
	path := filepath.Join(wd, DefaultConfigPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// readJSONLines parses every line of the file sink, failing on invalid JSON.
func readJSONLines(t testing.TB, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), "line: %s", sc.Text())
		entries = append(entries, entry)
	}
	require.NoError(t, sc.Err())
	return entries
}

func defaultLogFile(svc *Service) string {
	return filepath.Join(svc.WorkingDir, DefaultLogPath)
}
