// Package logging is a process-wide structured logging facility built on
// rs/zerolog. A Service owns one backend with two sinks: human-readable lines
// on the console and JSON lines in a local file. It also emits fixed-schema
// audit records.
//
// # Level resolution
//
// The effective level is chosen once, on first use, from (highest first) the
// command-line level, LOG_LEVEL, root.level in config/logging.yml, and INFO.
// Each sink can be pinned separately with LOG_HANDLER_LEVEL_<HANDLER>, e.g.
// LOG_HANDLER_LEVEL_FILE=DEBUG. Only TRACE, DEBUG, INFO, WARNING, ERROR and
// CRITICAL are recognized; anything else is ignored.
//
// # Typical usage
//
//	svc := &logging.Service{CLILevel: flagLevel}
//	defer svc.Close()
//
//	log, err := svc.GetLogger("worker")
//	if err != nil { return err } // the file sink could not be opened
//	log.Info("started")
//	log.ErrorWith().Err(err).Msg("sync failed")
//
//	svc.AuditLog("LOGIN", map[string]interface{}{"target": "db1"})
//
// A malformed config file is reported on stderr and the built-in console+file
// layout is used instead. Failing to create the log file is the only fatal
// initialization error.
package logging
