package notify

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Recipients(t *testing.T) {
	t.Parallel()

	msg := NewMessage("from@example.com",
		Addresses{"a@example.com"},
		Addresses{"b@example.com", "a@example.com"},
		Addresses{"c@example.com"},
		"s", "b")
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, msg.Recipients())
	assert.True(t, strings.HasSuffix(msg.MessageID, "@"+Domain+">"))
	assert.False(t, msg.Date.IsZero())
}

func TestMessage_BytesPlain(t *testing.T) {
	t.Parallel()

	msg := NewMessage("from@example.com", Addresses{"a@example.com"}, nil, Addresses{"hidden@example.com"},
		"Scan for http://x/ finished in 1m30s", "Found 2 unique issues.")
	data, err := msg.Bytes()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", parsed.Header.Get("To"))
	assert.Empty(t, parsed.Header.Get("Bcc"))
	assert.Equal(t, "Scan for http://x/ finished in 1m30s", parsed.Header.Get("Subject"))
	assert.Equal(t, msg.MessageID, parsed.Header.Get("Message-ID"))

	body, err := io.ReadAll(parsed.Body)
	require.NoError(t, err)
	assert.Equal(t, "Found 2 unique issues.", string(body))
}

func TestMessage_BytesWithAttachment(t *testing.T) {
	t.Parallel()

	msg := NewMessage("from@example.com", Addresses{"a@example.com"}, Addresses{"b@example.com"}, nil,
		"Résumé of scan", "Found 0 unique issues.")
	attachment := bytes.Repeat([]byte("<p>report</p>\n"), 40)
	msg.Attach("scan_report.html", "text/html; charset=utf-8", attachment)

	data, err := msg.Bytes()
	require.NoError(t, err)
	for line := range strings.SplitSeq(string(data), "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", parsed.Header.Get("Cc"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Résumé of scan", subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])

	text, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Equal(t, "Found 0 unique issues.", string(body))

	file, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "scan_report.html", file.FileName())
	assert.Equal(t, "text/html; charset=utf-8", file.Header.Get("Content-Type"))
	encoded, err := io.ReadAll(file)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, attachment, decoded)

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMessage_HeaderInjection(t *testing.T) {
	t.Parallel()

	msg := NewMessage("from@example.com", Addresses{"a@example.com"}, nil, nil,
		"Scan for http://x/\r\nBcc: victim@example.com finished", "body")
	data, err := msg.Bytes()
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, parsed.Header.Get("Bcc"))
}
