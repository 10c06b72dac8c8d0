// Package mailfred runs user handlers against an IMAP mailbox as if it were
// an inbound RPC queue, and replies over SMTP. Log lines from this package
// carry no component attribute; user handler code should log under its own
// logger (the "app" convention), so the two are easy to tell apart in a
// shared log stream.
package mailfred

import "bytes"

// Kind identifies what a Part represents in a message body.
type Kind int

const (
	// Text is a plain text/plain part.
	Text Kind = iota
	// Html is a text/html part.
	Html
	// Attachment is an application/octet-stream part; its advisory
	// filename is carried on Part.Name.
	Attachment
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Html:
		return "html"
	case Attachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Part is a single body segment. Name is only meaningful when Kind is
// Attachment.
type Part struct {
	Kind    Kind
	Name    string
	Content []byte
}

// Equal reports structural equality, bytewise on Content.
func (p Part) Equal(other Part) bool {
	return p.Kind == other.Kind && p.Name == other.Name && bytes.Equal(p.Content, other.Content)
}

// Message is the value passed between transports and services: the peer
// address (sender on inbound, recipient on outbound), the subject line,
// and an ordered body. Messages are immutable values and are cloned freely
// across goroutine boundaries by virtue of being plain structs.
type Message struct {
	Address string
	Header  string
	Body    []Part
}

// Equal reports structural equality.
func (m Message) Equal(other Message) bool {
	if m.Address != other.Address || m.Header != other.Header {
		return false
	}
	if len(m.Body) != len(other.Body) {
		return false
	}
	for i := range m.Body {
		if !m.Body[i].Equal(other.Body[i]) {
			return false
		}
	}
	return true
}

// Request is inbound work; it is just a Message by another name.
type Request = Message
