package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// PasswordResetMail builds the subject and body for a reset email. The link
// points at the frontend reset page with the one-time token in the query
// string; ttl is the token's configured lifetime.
func PasswordResetMail(publicBaseURL string, plaintextToken string, ttl time.Duration) (subject string, body string) {
	link := publicBaseURL
	if link == "" {
		link = "http://localhost:3000"
	}
	link = strings.TrimRight(link, "/") + "/reset-password?token=" + url.QueryEscape(plaintextToken)

	minutes := int(ttl.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	subject = "Reset your password"
	body = fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Use the link below to choose a new one:\n\n%s\n\n"+
			"This link expires in %d minutes. If you did not request this, you can safely ignore this email.\n",
		link,
		minutes,
	)
	return subject, body
}
