package imap

import (
	"io"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"

	"github.com/mailfred-go/mailfred"
)

// parseMessage reads a raw RFC 822 message and converts it into a
// mailfred.Message. It reports false if the message has no usable From
// address — such a message can't be replied to, so the caller leaves it
// alone rather than delivering it.
func parseMessage(raw io.Reader) (mailfred.Message, bool) {
	entity, err := gomessage.Read(raw)
	if err != nil {
		return mailfred.Message{}, false
	}

	header := mail.Header{Header: entity.Header}

	from, err := header.AddressList("From")
	if err != nil || len(from) == 0 || from[0].Address == "" {
		return mailfred.Message{}, false
	}

	subject, _ := header.Subject()

	return mailfred.Message{
		Address: from[0].Address,
		Header:  subject,
		Body:    extractParts(entity),
	}, true
}

// extractParts walks a MIME entity and collects text/plain and text/html
// bodies plus attachments, the same walk the teacher's extractBodies does,
// generalized to mailfred.Part and to recurse into nested multiparts.
func extractParts(entity *gomessage.Entity) []mailfred.Part {
	var parts []mailfred.Part

	mr := entity.MultipartReader()
	if mr == nil {
		parts = appendSinglePart(parts, entity)
		return parts
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		contentType, _, _ := part.Header.ContentType()
		disposition, _, _ := part.Header.ContentDisposition()

		if strings.HasPrefix(contentType, "multipart/") {
			parts = append(parts, extractParts(part)...)
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		if disposition == "attachment" {
			if len(body) == 0 {
				// Invariant: empty attachments are never emitted.
				continue
			}
			name, _ := (mail.AttachmentHeader{Header: part.Header}).Filename()
			parts = append(parts, mailfred.Part{Kind: mailfred.Attachment, Name: name, Content: body})
			continue
		}

		switch contentType {
		case "text/plain":
			parts = append(parts, mailfred.Part{Kind: mailfred.Text, Content: body})
		case "text/html":
			parts = append(parts, mailfred.Part{Kind: mailfred.Html, Content: body})
		default:
			if len(body) > 0 {
				name, _ := (mail.AttachmentHeader{Header: part.Header}).Filename()
				parts = append(parts, mailfred.Part{Kind: mailfred.Attachment, Name: name, Content: body})
			}
		}
	}

	return parts
}

func appendSinglePart(parts []mailfred.Part, entity *gomessage.Entity) []mailfred.Part {
	contentType, _, _ := entity.Header.ContentType()

	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return parts
	}

	switch contentType {
	case "text/html":
		return append(parts, mailfred.Part{Kind: mailfred.Html, Content: body})
	default:
		return append(parts, mailfred.Part{Kind: mailfred.Text, Content: body})
	}
}
