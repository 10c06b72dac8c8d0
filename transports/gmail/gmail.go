// Package gmail bundles the IMAP/SMTP transports into the fixed pair of
// endpoints and ports Gmail expects, so a caller only has to supply an
// account and an app password.
package gmail

import (
	"github.com/mailfred-go/mailfred"
	"github.com/mailfred-go/mailfred/transports/imap"
	"github.com/mailfred-go/mailfred/transports/smtp"
)

// Gmail is a mailfred.Connector bundling preconfigured Imap/Smtp
// transports for a Gmail (or Google Workspace) account. Username is the
// local part only; Password should be an app password, not the account
// password.
type Gmail struct {
	Username string
	Password string
}

// Split implements mailfred.Connector.
func (g Gmail) Split() (mailfred.InboundTransport, mailfred.OutboundTransport) {
	user := g.Username + "@gmail.com"

	in := imap.Imap{
		Domain:   "imap.gmail.com",
		Port:     993,
		User:     user,
		Password: g.Password,
		Folder:   "INBOX",
	}
	out := smtp.Smtp{
		Server:   "smtp.gmail.com",
		Port:     587,
		User:     user,
		Password: g.Password,
	}
	return in, out
}
