package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a plain-text e-mail with optional attachments.
type Message struct {
	From        string
	To          Addresses
	Cc          Addresses
	Bcc         Addresses
	Subject     string
	Body        string
	Attachments []Attachment

	// Date and MessageID are filled by NewMessage.
	Date      time.Time
	MessageID string
}

// NewMessage returns a message dated now with a fresh Message-ID.
func NewMessage(from string, to, cc, bcc Addresses, subject, body string) *Message {
	return &Message{
		From:      from,
		To:        to,
		Cc:        cc,
		Bcc:       bcc,
		Subject:   subject,
		Body:      body,
		Date:      time.Now(),
		MessageID: "<" + uuid.NewString() + "@" + Domain + ">",
	}
}

// Recipients returns every envelope recipient, To then Cc then Bcc,
// without duplicates.
func (m *Message) Recipients() []string {
	var out []string
	for _, list := range []Addresses{m.To, m.Cc, m.Bcc} {
		for _, addr := range list {
			if !slices.Contains(out, addr) {
				out = append(out, addr)
			}
		}
	}
	return out
}

// Attach adds an attachment.
func (m *Message) Attach(filename, contentType string, data []byte) {
	m.Attachments = append(m.Attachments, Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
}

// Bytes encodes the message in RFC 5322 form with CRLF line endings. Bcc
// is never written to the headers.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, "From", m.From)
	writeHeader(&buf, "To", m.To.String())
	if len(m.Cc) > 0 {
		writeHeader(&buf, "Cc", m.Cc.String())
	}
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	writeHeader(&buf, "Date", m.Date.Format(time.RFC1123Z))
	if m.MessageID != "" {
		writeHeader(&buf, "Message-ID", m.MessageID)
	}
	writeHeader(&buf, "MIME-Version", "1.0")

	if len(m.Attachments) == 0 {
		writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
		writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQuotedPrintable(&buf, m.Body); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(body, m.Body); err != nil {
		return nil, err
	}

	for _, a := range m.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, fmt.Errorf("attachment %s: %w", a.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	// Header injection: a value never spans lines.
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	buf.WriteString(name + ": " + value + "\r\n")
}

func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}

// base64LineLength is the maximum encoded line length of RFC 2045.
const base64LineLength = 76

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(base64LineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
