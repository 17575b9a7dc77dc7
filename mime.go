package smtpkit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateHeaderLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

func newBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func formatDateHeader(t time.Time) string {
	return t.Format(dateHeaderLayout)
}

// formatMessageIDTimestamp renders seconds-since-epoch with a fractional part,
// trimming trailing zeros but always keeping at least one decimal digit —
// the same shape a language runtime's default float description produces.
func formatMessageIDTimestamp(t time.Time) string {
	seconds := float64(t.UnixNano()) / 1e9
	s := strconv.FormatFloat(seconds, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// messageID builds the Message-ID header value. The domain tail is taken from
// whatever follows the first '@' in the sender's address; if the sender has
// no '@', the tail — and the '@' itself — are omitted entirely.
func messageID(t time.Time, senderAddress string) string {
	timestamp := formatMessageIDTimestamp(t)
	if idx := strings.IndexByte(senderAddress, '@'); idx >= 0 {
		domain := senderAddress[idx+1:]
		if domain != "" {
			return fmt.Sprintf("<%s@%s>", timestamp, domain)
		}
	}
	return fmt.Sprintf("<%s>", timestamp)
}

// buildHeaders renders every header line preceding the Content-Type block, in
// a fixed order: From, To, Reply-to (if present), Cc (if present), Date,
// Message-ID, Subject, MIME-Version.
func buildHeaders(email *Email, sendTime time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", email.Sender.mimeForm()))

	recipientForms := make([]string, len(email.Recipients))
	for i, c := range email.Recipients {
		recipientForms[i] = c.mimeForm()
	}
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipientForms, ", ")))

	if email.ReplyTo != nil {
		buf.WriteString(fmt.Sprintf("Reply-to: %s\r\n", email.ReplyTo.mimeForm()))
	}
	if len(email.CC) > 0 {
		ccForms := make([]string, len(email.CC))
		for i, c := range email.CC {
			ccForms[i] = c.mimeForm()
		}
		buf.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(ccForms, ", ")))
	}

	buf.WriteString(fmt.Sprintf("Date: %s\r\n", formatDateHeader(sendTime)))
	buf.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID(sendTime, email.Sender.Address)))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	return buf.Bytes()
}

// renderHeadersAndPayload renders "header lines, blank line, payload,
// trailing CRLF" — the shape of a single leaf MIME part, and also of any
// multipart wrapper (whose payload is itself a rendered set of child parts).
func renderHeadersAndPayload(headers []string, payload []byte) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		buf.WriteString(h)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(payload)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// renderLeafPart renders a text/plain or text/html part, base64-encoding the
// content when FeatureBase64EncodeAllMessages is set.
func renderLeafPart(mimeType, text string, flags FeatureFlags) []byte {
	headers := []string{fmt.Sprintf(`Content-Type: %s; charset="UTF-8"`, mimeType)}
	payload := []byte(text)
	if flags.Has(FeatureBase64EncodeAllMessages) {
		headers = append(headers, "Content-Transfer-Encoding: base64")
		payload = encodeBase64(payload, flags)
	}
	return renderHeadersAndPayload(headers, payload)
}

// attachmentPart renders an attachment (regular or inline) as an always
// base64-encoded part.
func attachmentPart(a Attachment, flags FeatureFlags) []byte {
	headers := []string{fmt.Sprintf("Content-Type: %s", a.ContentType), "Content-Transfer-Encoding: base64"}
	if a.kind == attachmentInline {
		headers = append(headers,
			fmt.Sprintf(`Content-Disposition: inline; filename="%s"`, a.Name),
			fmt.Sprintf("Content-ID: <%s>", a.contentID))
	} else {
		headers = append(headers, fmt.Sprintf(`Content-Disposition: attachment; filename="%s"`, a.Name))
		if a.contentID != "" {
			headers = append(headers, fmt.Sprintf("Content-ID: <%s>", a.contentID))
		}
	}
	return renderHeadersAndPayload(headers, encodeBase64(a.Data, flags))
}

// renderMultipartBody lays out a sequence of already-rendered child parts
// between boundary markers, closing with the "--boundary--" final marker.
func renderMultipartBody(boundary string, parts [][]byte) []byte {
	var buf bytes.Buffer
	for _, part := range parts {
		buf.WriteString("--" + boundary + "\r\n")
		buf.Write(part)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + boundary + "--\r\n")
	return buf.Bytes()
}

// wrapMultipart renders a full multipart part: its own Content-Type header
// (with boundary), a blank line, then the boundary-delimited children.
func wrapMultipart(contentType, boundary string, children [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Content-Type: %s; boundary=%s\r\n\r\n", contentType, boundary))
	buf.Write(renderMultipartBody(boundary, children))
	return buf.Bytes()
}

// innerBodyPart renders the Body itself: a flat leaf part for plain/html, or
// a multipart/alternative wrapper when both renderings are present.
func innerBodyPart(body Body, flags FeatureFlags) []byte {
	switch body.kind {
	case bodyHTML:
		return renderLeafPart("text/html", body.html, flags)
	case bodyUniversal:
		plainPart := renderLeafPart("text/plain", body.plain, flags)
		htmlPart := renderLeafPart("text/html", body.html, flags)
		return wrapMultipart("multipart/alternative", newBoundary(), [][]byte{plainPart, htmlPart})
	default:
		return renderLeafPart("text/plain", body.plain, flags)
	}
}

func partitionAttachments(attachments []Attachment) (regular, inline []Attachment) {
	for _, a := range attachments {
		if a.kind == attachmentInline {
			inline = append(inline, a)
		} else {
			regular = append(regular, a)
		}
	}
	return regular, inline
}

// promoteTopHeader splits a rendered part (headers, blank line, content) back
// into its header block (including the blank line's leading CRLF) and the
// content that follows, so the part's own Content-Type can be merged into the
// outer header list instead of being nested one level deeper.
func promoteTopHeader(part []byte) (headerLines, content []byte) {
	idx := bytes.Index(part, []byte("\r\n\r\n"))
	return part[:idx+2], part[idx+4:]
}

// composeBodyBlock builds the Content-Type header line(s) and the content
// that follows the header/body blank line, accounting for inline attachments
// (wrapped in multipart/related) and regular attachments (wrapped in
// multipart/mixed, possibly around an already-related-wrapped body).
func composeBodyBlock(email *Email, flags FeatureFlags) (headerLines, content []byte) {
	regular, inline := partitionAttachments(email.Attachments)

	current := innerBodyPart(email.Body, flags)

	if len(inline) > 0 {
		children := make([][]byte, 0, 1+len(inline))
		children = append(children, current)
		for _, a := range inline {
			children = append(children, attachmentPart(a, flags))
		}
		current = wrapMultipart("multipart/related", newBoundary(), children)
	}

	if len(regular) > 0 {
		children := make([][]byte, 0, 1+len(regular))
		children = append(children, current)
		for _, a := range regular {
			children = append(children, attachmentPart(a, flags))
		}
		current = wrapMultipart("multipart/mixed", newBoundary(), children)
	}

	return promoteTopHeader(current)
}

// buildDataPayload renders the complete DATA payload: message headers,
// Content-Type header(s), a blank line, and the body/attachment content —
// everything that precedes the "\r\n.\r\n" terminator the conversation state
// machine appends when it sends the payload.
func buildDataPayload(sendTime time.Time, email *Email, flags FeatureFlags) []byte {
	headers := buildHeaders(email, sendTime)
	bodyHeaderLines, content := composeBodyBlock(email, flags)

	var buf bytes.Buffer
	buf.Write(headers)
	buf.Write(bodyHeaderLines)
	buf.WriteString("\r\n")
	buf.Write(content)
	return buf.Bytes()
}
