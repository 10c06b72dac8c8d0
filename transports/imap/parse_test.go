package imap

import (
	"strings"
	"testing"

	"github.com/mailfred-go/mailfred"
)

func TestParseMessage_TextAndHTML(t *testing.T) {
	t.Parallel()

	raw := `From: sender@example.com
Subject: count
Content-Type: multipart/alternative; boundary="xyz"

--xyz
Content-Type: text/plain

plain body

--xyz
Content-Type: text/html

<b>html body</b>

--xyz--`

	msg, ok := parseMessage(strings.NewReader(raw))
	if !ok {
		t.Fatal("expected message to parse")
	}
	if msg.Address != "sender@example.com" {
		t.Errorf("unexpected address: %q", msg.Address)
	}
	if msg.Header != "count" {
		t.Errorf("unexpected subject: %q", msg.Header)
	}

	var gotText, gotHTML bool
	for _, p := range msg.Body {
		switch p.Kind {
		case mailfred.Text:
			gotText = strings.Contains(string(p.Content), "plain body")
		case mailfred.Html:
			gotHTML = strings.Contains(string(p.Content), "html body")
		}
	}
	if !gotText || !gotHTML {
		t.Errorf("expected both text and html parts, got %+v", msg.Body)
	}
}

func TestParseMessage_AttachmentWithEmptyContentDropped(t *testing.T) {
	t.Parallel()

	raw := `From: sender@example.com
Subject: hi
Content-Type: multipart/mixed; boundary="xyz"

--xyz
Content-Type: text/plain

body

--xyz
Content-Type: application/octet-stream
Content-Disposition: attachment; filename="empty.bin"


--xyz--`

	msg, ok := parseMessage(strings.NewReader(raw))
	if !ok {
		t.Fatal("expected message to parse")
	}

	for _, p := range msg.Body {
		if p.Kind == mailfred.Attachment {
			t.Errorf("expected empty attachment to be dropped, found %+v", p)
		}
	}
}

func TestParseMessage_NoFromAddressFails(t *testing.T) {
	t.Parallel()

	raw := `Subject: no sender

body`

	_, ok := parseMessage(strings.NewReader(raw))
	if ok {
		t.Error("expected parse to fail without a From address")
	}
}
