package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// auditEntries returns the decoded audit payloads written to the file sink.
func auditEntries(t *testing.T, svc *Service) []map[string]interface{} {
	t.Helper()
	var records []map[string]interface{}
	for _, e := range readJSONLines(t, defaultLogFile(svc)) {
		if e["logger"] != AuditLoggerName {
			continue
		}
		assert.Equal(t, "INFO", e["level"])
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(e["message"].(string)), &rec))
		records = append(records, rec)
	}
	return records
}

func TestAuditLog(t *testing.T) {
	svc, stdout, _ := newTestService(t, MapEnv{EnvUser: "alice"})

	svc.AuditLog("LOGIN", map[string]interface{}{"target": "db1"})

	records := auditEntries(t, svc)
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, "LOGIN", rec[AuditKeyAction])
	assert.Equal(t, "db1", rec["target"])
	assert.Equal(t, "alice", rec[AuditKeyUser])
	assert.Equal(t, DefaultCompliance, rec[AuditKeyCompliance])
	assert.Equal(t, float64(os.Getpid()), rec[AuditKeyProcessID])

	if host, err := os.Hostname(); err == nil && host != "" {
		assert.Equal(t, host, rec[AuditKeyServerID])
	}

	ts, err := time.Parse(time.RFC3339, rec[AuditKeyTimestamp].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 0, offset)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	assert.Contains(t, stdout.String(), "[INFO] audit - {")
	assert.Contains(t, stdout.String(), `"action":"LOGIN"`)
}

func TestAuditLog_ComplianceAndOverwrite(t *testing.T) {
	svc, _, _ := newTestService(t, MapEnv{EnvUser: "alice"})

	svc.AuditLog("EXPORT", map[string]interface{}{
		AuditKeyUser: "impersonated",
		"rows":       12,
	}, WithCompliance("GDPR Art. 30"))

	records := auditEntries(t, svc)
	require.Len(t, records, 1)
	assert.Equal(t, "GDPR Art. 30", records[0][AuditKeyCompliance])
	assert.Equal(t, "impersonated", records[0][AuditKeyUser])
	assert.Equal(t, float64(12), records[0]["rows"])
}

func TestAuditLog_KeepsNonASCII(t *testing.T) {
	svc, _, _ := newTestService(t, MapEnv{EnvUser: "alice"})
	svc.AuditLog("VIEW", nil)

	raw, err := os.ReadFile(defaultLogFile(svc))
	require.NoError(t, err)
	assert.Contains(t, string(raw), DefaultCompliance)
}

func TestAuditLog_BelowThreshold(t *testing.T) {
	svc, stdout, _ := newTestService(t, MapEnv{EnvLogLevel: "ERROR"})
	svc.AuditLog("LOGIN", nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, auditEntries(t, svc))
}

func TestAuditLog_InitFailureDoesNotPropagate(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	svc, _, stderr := newTestService(t, MapEnv{EnvLogPath: filepath.Join(blocker, "dev.log")})

	assert.NotPanics(t, func() {
		svc.AuditLog("LOGIN", map[string]interface{}{"target": "db1"})
	})
	assert.Contains(t, stderr.String(), `audit log "LOGIN" dropped`)
}

func TestAuditLog_UnserializableDetail(t *testing.T) {
	svc, _, stderr := newTestService(t, MapEnv{EnvUser: "alice"})

	assert.NotPanics(t, func() {
		svc.AuditLog("LOGIN", map[string]interface{}{"ch": make(chan int)})
	})
	assert.Contains(t, stderr.String(), errMsgAuditSerialize)
	assert.Empty(t, auditEntries(t, svc))
}

func TestNewAuditRecord(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 123456000, time.FixedZone("KST", 9*3600))

	rec := NewAuditRecord("DELETE", map[string]interface{}{"id": 7}, MapEnv{EnvUser: "bob"}, WithAuditTime(at))

	assert.Equal(t, "DELETE", rec[AuditKeyAction])
	assert.Equal(t, "bob", rec[AuditKeyUser])
	assert.Equal(t, os.Getpid(), rec[AuditKeyProcessID])
	assert.Equal(t, "2024-05-05T22:08:09.123456+00:00", rec[AuditKeyTimestamp])
	assert.Equal(t, DefaultCompliance, rec[AuditKeyCompliance])
	assert.Equal(t, 7, rec["id"])

	payload, err := rec.JSON()
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(payload, "\n"))
	assert.Contains(t, payload, `"compliance_check":"`+DefaultCompliance+`"`)
}

func TestCurrentUser(t *testing.T) {
	assert.Equal(t, "carol", currentUser(MapEnv{EnvUser: "carol"}))
	assert.NotEmpty(t, currentUser(MapEnv{}))
	assert.NotEmpty(t, currentUser(nil))
}
