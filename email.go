package smtpkit

import (
	"fmt"
	"strings"
)

// Contact is a single named or anonymous mailbox address.
type Contact struct {
	Address string
	Name    string
}

// mimeForm renders the contact the way it appears in a From/To/Cc/Reply-to
// header: `"escaped name" <addr>` when Name is set, or the bare address
// otherwise.
func (c Contact) mimeForm() string {
	if c.Name == "" {
		return c.Address
	}
	escaped := strings.ReplaceAll(c.Name, `"`, `\"`)
	return fmt.Sprintf(`"%s" <%s>`, escaped, c.Address)
}

type bodyKind int

const (
	bodyPlain bodyKind = iota
	bodyHTML
	bodyUniversal
)

// Body is the message content, as plain text, HTML, or both (rendered as a
// multipart/alternative part when both are present).
type Body struct {
	kind  bodyKind
	plain string
	html  string
}

// PlainBody is a text/plain body.
func PlainBody(text string) Body { return Body{kind: bodyPlain, plain: text} }

// HTMLBody is a text/html body.
func HTMLBody(html string) Body { return Body{kind: bodyHTML, html: html} }

// UniversalBody carries both a plain-text and an HTML rendering of the same
// message, composed as multipart/alternative.
func UniversalBody(plain, html string) Body { return Body{kind: bodyUniversal, plain: plain, html: html} }

type attachmentKind int

const (
	attachmentRegular attachmentKind = iota
	attachmentInline
)

// Attachment is a file carried alongside the body, either as a regular
// attachment (multipart/mixed) or an inline one referenced from HTML body
// content via its content id (multipart/related).
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte

	kind      attachmentKind
	contentID string
}

// NewAttachment builds a regular (non-inline) attachment.
func NewAttachment(name, contentType string, data []byte) Attachment {
	return Attachment{Name: name, ContentType: contentType, Data: data, kind: attachmentRegular}
}

// NewAttachmentWithContentID builds a regular attachment that also carries a
// Content-ID header — useful when something other than HTML cid: references
// needs to identify the part, without making the attachment inline.
func NewAttachmentWithContentID(name, contentType string, data []byte, contentID string) Attachment {
	return Attachment{Name: name, ContentType: contentType, Data: data, kind: attachmentRegular, contentID: contentID}
}

// NewInlineAttachment builds an attachment referenced from HTML body content
// via `cid:contentID`. contentID must not be empty.
func NewInlineAttachment(name, contentType string, data []byte, contentID string) (Attachment, error) {
	if contentID == "" {
		return Attachment{}, ErrInlineAttachmentRequiresContentID
	}
	return Attachment{Name: name, ContentType: contentType, Data: data, kind: attachmentInline, contentID: contentID}, nil
}

// Email is a fully-formed message ready for submission. Build one with
// NewEmail, then optionally attach ReplyTo/CC/BCC/Attachments with the With*
// methods.
type Email struct {
	Sender      Contact
	ReplyTo     *Contact
	Recipients  []Contact
	CC          []Contact
	BCC         []Contact
	Subject     string
	Body        Body
	Attachments []Attachment
}

// NewEmail constructs an Email and validates it immediately: a sender with an
// empty address, or no recipients, is rejected here rather than at Send time.
func NewEmail(sender Contact, recipients []Contact, subject string, body Body) (*Email, error) {
	e := &Email{Sender: sender, Recipients: recipients, Subject: subject, Body: body}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// WithReplyTo sets the Reply-to header contact.
func (e *Email) WithReplyTo(c Contact) *Email {
	e.ReplyTo = &c
	return e
}

// WithCC appends carbon-copy recipients; they also appear in the Cc header.
func (e *Email) WithCC(cs ...Contact) *Email {
	e.CC = append(e.CC, cs...)
	return e
}

// WithBCC appends blind carbon-copy recipients; they receive the message via
// RCPT TO but never appear in any header.
func (e *Email) WithBCC(cs ...Contact) *Email {
	e.BCC = append(e.BCC, cs...)
	return e
}

// WithAttachments appends attachments, preserving the order regular and
// inline attachments were added in.
func (e *Email) WithAttachments(as ...Attachment) *Email {
	e.Attachments = append(e.Attachments, as...)
	return e
}

// Validate re-checks the invariants NewEmail enforced at construction time.
// Useful after direct field mutation.
func (e *Email) Validate() error {
	if e.Sender.Address == "" {
		return ErrEmptyContactAddress
	}
	if len(e.Recipients) == 0 {
		return ErrNoRecipients
	}
	for _, c := range e.allRecipients() {
		if c.Address == "" {
			return ErrEmptyContactAddress
		}
	}
	return nil
}

// allRecipients returns To, Cc, and Bcc contacts in that order — the full set
// addressed via RCPT TO.
func (e *Email) allRecipients() []Contact {
	all := make([]Contact, 0, len(e.Recipients)+len(e.CC)+len(e.BCC))
	all = append(all, e.Recipients...)
	all = append(all, e.CC...)
	all = append(all, e.BCC...)
	return all
}
