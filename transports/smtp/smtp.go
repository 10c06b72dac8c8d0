// Package smtp is the outbound transport: it builds a MIME message from a
// mailfred.Message and sends it over SMTP via gomail, which is also what
// builds the multipart/mixed structure (text, optional HTML alternative,
// attachments).
package smtp

import (
	"context"
	"crypto/tls"
	"io"

	gomail "gopkg.in/gomail.v2"

	"github.com/mailfred-go/mailfred"
)

// Security picks the transport security gomail's dialer uses.
type Security int

const (
	// StartTLS upgrades the plain connection, same as gomail's default.
	StartTLS Security = iota
	// SSL dials directly over TLS (port 465 style).
	SSL
	// Insecure skips certificate verification; for test servers only.
	Insecure
)

// Smtp is an OutboundTransport descriptor.
type Smtp struct {
	Server   string
	Port     int
	User     string
	Password string
	Security Security
}

// Name implements mailfred.OutboundTransport.
func (Smtp) Name() string { return "smtp" }

// Connect implements mailfred.OutboundTransport. gomail's Dialer has no
// persistent handshake to perform up front — DialAndSend connects per
// message — so Connect performs no network I/O and no validation; it just
// hands back a thin sender wrapping the dialer.
func (s Smtp) Connect(ctx context.Context) (mailfred.Sender, error) {
	dialer := gomail.NewDialer(s.Server, s.Port, s.User, s.Password)

	switch s.Security {
	case SSL:
		dialer.SSL = true
	case Insecure:
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &smtpSender{dialer: dialer, from: s.User}, nil
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// Send implements mailfred.Sender.
func (s *smtpSender) Send(ctx context.Context, msg *mailfred.Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Address)
	m.SetHeader("Subject", msg.Header)

	setBody(m, msg.Body)

	return s.dialer.DialAndSend(m)
}

// setBody lays out a Message's parts onto a gomail.Message, one MIME child
// per Part, in order: the first Text/Html part becomes the primary body
// (gomail requires SetBody before any AddAlternative/Attach call), every
// further Text/Html part is added with AddAlternative, and every Attachment
// part is attached. Unlike a single "body" plus "alternative", gomail places
// no limit on how many times AddAlternative is called, so this maps the
// whole of parts onto the message instead of only the first part of each
// kind.
func setBody(m *gomail.Message, parts []mailfred.Part) {
	bodySet := false

	for _, p := range parts {
		switch p.Kind {
		case mailfred.Text, mailfred.Html:
			contentType := "text/plain"
			if p.Kind == mailfred.Html {
				contentType = "text/html"
			}
			if !bodySet {
				m.SetBody(contentType, string(p.Content))
				bodySet = true
			} else {
				m.AddAlternative(contentType, string(p.Content))
			}
		case mailfred.Attachment:
			content := p.Content
			m.Attach(attachmentName(p),
				gomail.SetCopyFunc(func(w io.Writer) error {
					_, err := w.Write(content)
					return err
				}),
			)
		}
	}

	if !bodySet {
		m.SetBody("text/plain", "")
	}
}

func attachmentName(p mailfred.Part) string {
	if p.Name != "" {
		return p.Name
	}
	return "attachment"
}
