package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"os/user"
	"time"

	"github.com/Station-Manager/errors"
)

// AuditRecord is the payload of an audit event. The reserved keys are always
// present; caller detail is merged over them and may replace any of them.
type AuditRecord map[string]interface{}

// Reserved audit record keys.
const (
	AuditKeyAction     = "action"
	AuditKeyUser       = "user"
	AuditKeyProcessID  = "process_id"
	AuditKeyServerID   = "server_id"
	AuditKeyTimestamp  = "timestamp"
	AuditKeyCompliance = "compliance_check"
)

type auditOptions struct {
	compliance string
	now        time.Time
}

// AuditOption customizes a single audit record.
type AuditOption func(*auditOptions)

// WithCompliance replaces DefaultCompliance on the record.
func WithCompliance(tag string) AuditOption {
	return func(o *auditOptions) {
		o.compliance = tag
	}
}

// WithAuditTime pins the record timestamp.
func WithAuditTime(t time.Time) AuditOption {
	return func(o *auditOptions) {
		o.now = t
	}
}

// NewAuditRecord builds the record for action. env supplies USER; the OS
// account is consulted next and "unknown" is the last resort.
func NewAuditRecord(action string, detail map[string]interface{}, env Environment, opts ...AuditOption) AuditRecord {
	o := auditOptions{compliance: DefaultCompliance}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now.IsZero() {
		o.now = time.Now()
	}

	host, err := os.Hostname()
	if err != nil || host == emptyString {
		host = unknown
	}

	rec := AuditRecord{
		AuditKeyAction:     action,
		AuditKeyUser:       currentUser(env),
		AuditKeyProcessID:  os.Getpid(),
		AuditKeyServerID:   host,
		AuditKeyTimestamp:  o.now.UTC().Format(auditTimestampLayout),
		AuditKeyCompliance: o.compliance,
	}
	for k, v := range detail {
		rec[k] = v
	}
	return rec
}

// JSON serializes the record on a single line with non-ASCII text kept as is.
func (r AuditRecord) JSON() (string, error) {
	const op errors.Op = "logging.AuditRecord.JSON"
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]interface{}(r)); err != nil {
		return emptyString, errors.New(op).Err(err).Msg(errMsgAuditSerialize)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func currentUser(env Environment) string {
	if env != nil {
		if v, ok := env.LookupEnv(EnvUser); ok && v != emptyString {
			return v
		}
	}
	if u, err := user.Current(); err == nil && u.Username != emptyString {
		return u.Username
	}
	return unknown
}

// AuditLog emits an audit record at INFO under the "audit" logger. It never
// fails from the caller's point of view: problems are reported on stderr.
func (s *Service) AuditLog(action string, detail map[string]interface{}, opts ...AuditOption) {
	if s == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.warnf("WARN", "audit log %q dropped: %v", action, r)
		}
	}()

	if _, err := s.GetLogger(AuditLoggerName); err != nil {
		s.warnf("WARN", "audit log %q dropped: %v", action, err)
		return
	}
	l := s.named(AuditLoggerName)
	if !l.Enabled(InfoLevel) {
		return
	}

	payload, err := NewAuditRecord(action, detail, s.environment(), opts...).JSON()
	if err != nil {
		s.warnf("WARN", "audit log %q dropped: %v", action, err)
		return
	}
	l.emit(InfoLevel, payload, emptyString, 1)
}
