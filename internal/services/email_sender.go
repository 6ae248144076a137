package services

import "errors"

// ErrNotConfigured is returned when the mail transport has no host or from
// address. The auth handlers translate it to a generic 500; it never reaches
// the client verbatim.
var ErrNotConfigured = errors.New("email sender is not configured")

type EmailSender interface {
	Send(to string, subject string, body string) error
}
