// Package log provides the application's slog setup with automatic
// redaction of credentials.
//
// Reports are mailed through SMTP servers and scans record submitted form
// values, so both the notification settings (username, password) and the
// crawled URLs (login forms with ?password=... in the query) can carry
// secrets into log lines. SecureHandler masks them before any handler sees
// the record.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("sending report", "server", "smtp.example.com", "password", pw)
//	// password=***REDACTED***
//
// NewLogger writes colored console output through charmbracelet/log when w
// is a terminal and plain slog text otherwise.
package log
