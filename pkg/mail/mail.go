// Package mail sends account notification emails. Sending is asynchronous:
// a failed delivery is logged and never fails the originating request.
package mail

import (
	"fmt"

	"github.com/twoschool/twoschool-api/pkg/config"
)

// Message is a plain-text email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer delivers messages without blocking the caller.
type Mailer interface {
	Send(msg Message)
}

// WelcomeMessage builds the signup notification carrying the temporary
// password the new user logs in with for the first time.
func WelcomeMessage(cfg config.MailConfig, toName, toEmail, tempPassword string) Message {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"an account has been created for you on %s.\n\n"+
			"You can sign in at %s using this email address and the temporary password below:\n\n"+
			"    %s\n\n"+
			"Please change it after your first login.\n\n"+
			"If you believe this account was created by mistake, contact us at %s.\n\n"+
			"The %s team",
		toName, cfg.AppName, cfg.FrontendURL, tempPassword, cfg.ContactEmail, cfg.AppName,
	)

	return Message{
		ToName:  toName,
		ToEmail: toEmail,
		Subject: fmt.Sprintf("Welcome to %s", cfg.AppName),
		Body:    body,
	}
}
