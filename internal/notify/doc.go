// Package notify e-mails a short scan summary, optionally with a rendered
// report attached, when a scan has been reported.
//
// The message says which target was scanned, how long it took and how many
// unique issues were found. Delivery goes through the Mailer interface;
// SMTPMailer is the production implementation.
package notify
