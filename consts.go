package logging

const (
	// AuditLoggerName is the reserved logger name audit records are emitted under.
	AuditLoggerName = "audit"
	// DefaultCompliance is the compliance tag stamped on audit records unless overridden.
	DefaultCompliance = "개인정보보호법 제28조"

	// DefaultLogPath is the file sink target when LOG_PATH is unset.
	DefaultLogPath = "logs/dev.log"
	// DefaultConfigPath is where the optional YAML logging config is looked up.
	DefaultConfigPath = "config/logging.yml"
	// DefaultProjectName is the last-resort default logger name.
	DefaultProjectName = "app"

	consoleHandlerName = "console"
	fileHandlerName    = "file"

	emptyString = ""
	unknown     = "unknown"
)

// Environment variables consulted during initialization.
const (
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogPath            = "LOG_PATH"
	EnvHandlerLevelPrefix = "LOG_HANDLER_LEVEL_"
	EnvProjectName        = "PROJECT_NAME"
	EnvUser               = "USER"
)

const (
	errMsgNilService      = "Logging service is nil."
	errMsgNilConfig       = "Logging config is nil."
	errMsgConfigRead      = "Logging config could not be read."
	errMsgConfigParse     = "Logging config could not be parsed."
	errMsgConfigInvalid   = "Logging configuration is invalid."
	errMsgLogDir          = "Failed to create logs directory."
	errMsgLogFile         = "Failed to open log file."
	errMsgNoHandlers      = "No logging handlers enabled."
	errMsgUnknownHandler  = "Root references an unknown handler."
	errMsgServiceClosed   = "Logging service is closed."
	errMsgDotEnv          = "Failed to read .env file."
	errMsgAuditSerialize  = "Failed to serialize audit record."
	errMsgFormatterFailed = "Failed to format log record."
)

// timestampLayout mirrors the conventional "2006-01-02 15:04:05,000" asctime.
const timestampLayout = "2006-01-02 15:04:05,000"

// auditTimestampLayout is ISO-8601 with microseconds and an explicit offset.
const auditTimestampLayout = "2006-01-02T15:04:05.000000-07:00"
