package notify

import "errors"

var (
	// ErrInvalidOptions is returned when notification options fail
	// validation. The wrapped message lists every offending option.
	ErrInvalidOptions = errors.New("invalid notification options")

	// ErrNoRecipients is returned when a message has no To, Cc or Bcc
	// address.
	ErrNoRecipients = errors.New("message has no recipients")

	// ErrSTARTTLSUnsupported is returned when tls is requested but the
	// server does not offer STARTTLS.
	ErrSTARTTLSUnsupported = errors.New("SMTP server does not support STARTTLS")

	// ErrAuthUnsupported is returned when authentication is configured but
	// the server does not offer AUTH.
	ErrAuthUnsupported = errors.New("SMTP server does not support authentication")

	// ErrUnexpectedChallenge is returned by LOGIN authentication when the
	// server asks for something other than the username or password.
	ErrUnexpectedChallenge = errors.New("unexpected SMTP LOGIN challenge")
)
