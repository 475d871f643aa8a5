package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/formatter"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
)

type fakeMailer struct {
	sent []*Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg *Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func testSummary() (*model.ScanSummary, *model.PluginResults) {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	summary := model.NewScanSummary(&model.Scan{
		Target:     "http://testfire.example/",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Issues: []model.Issue{
			{Name: "XSS", Severity: model.SeverityHigh, URL: "http://testfire.example/search"},
			{Name: "SQL Injection", Severity: model.SeverityCritical, URL: "http://testfire.example/login"},
		},
	})
	results := model.NewPluginResults()
	_ = results.Add(model.PluginHealthMap, payload.Map(
		payload.Pair("map", payload.Seq(
			payload.Map(payload.Pair("unsafe", payload.String("http://testfire.example/login"))),
		)),
		payload.Pair("total", payload.Int(1)),
		payload.Pair("safe", payload.Int(0)),
		payload.Pair("unsafe", payload.Int(1)),
		payload.Pair("issue_percentage", payload.Int(100)),
	))
	return summary, results
}

func newTestNotifier(t *testing.T, opts Options, mailer Mailer) (*Notifier, string) {
	t.Helper()

	reg, err := formatter.NewDefaultRegistry()
	require.NoError(t, err)
	dir := t.TempDir()
	n, err := NewNotifier(opts, mailer, reg, quiet, WithTempDir(dir))
	require.NoError(t, err)
	return n, dir
}

func TestSubjectAndBody(t *testing.T) {
	t.Parallel()

	summary, _ := testSummary()
	assert.Equal(t, "Scan for http://testfire.example/ finished in 1m30s", Subject(summary))
	assert.Equal(t, "Found 2 unique issues.", Body(summary))
}

func TestNewNotifier_ValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := NewNotifier(Options{}, &fakeMailer{}, nil)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestNotifier_Notify(t *testing.T) {
	t.Parallel()

	t.Run("attaches the configured report", func(t *testing.T) {
		t.Parallel()

		mailer := &fakeMailer{}
		opts := validOptions()
		opts.Report = "html"
		opts.Cc = Addresses{"cc@example.com"}
		n, dir := newTestNotifier(t, opts, mailer)

		summary, results := testSummary()
		require.NoError(t, n.Notify(context.Background(), summary, results))

		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, "scanner@example.com", msg.From)
		assert.Equal(t, Addresses{"secops@example.com"}, msg.To)
		assert.Equal(t, Addresses{"cc@example.com"}, msg.Cc)
		assert.Equal(t, Subject(summary), msg.Subject)
		assert.Equal(t, "Found 2 unique issues.", msg.Body)

		require.Len(t, msg.Attachments, 1)
		a := msg.Attachments[0]
		assert.Equal(t, "scan_report.html", a.Filename)
		assert.Equal(t, "text/html; charset=utf-8", a.ContentType)
		assert.True(t, strings.HasPrefix(string(a.Data), "<!DOCTYPE html>"))
		assert.Contains(t, string(a.Data), `class="unsafe"`)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "rendered report must be removed")
	})

	t.Run("default report is text", func(t *testing.T) {
		t.Parallel()

		mailer := &fakeMailer{}
		n, _ := newTestNotifier(t, validOptions(), mailer)
		summary, results := testSummary()
		require.NoError(t, n.Notify(context.Background(), summary, results))

		require.Len(t, mailer.sent[0].Attachments, 1)
		assert.Equal(t, "scan_report.txt", mailer.sent[0].Attachments[0].Filename)
	})

	t.Run("none sends no attachment", func(t *testing.T) {
		t.Parallel()

		mailer := &fakeMailer{}
		opts := validOptions()
		opts.Report = "none"
		n, _ := newTestNotifier(t, opts, mailer)
		summary, results := testSummary()
		require.NoError(t, n.Notify(context.Background(), summary, results))

		require.Len(t, mailer.sent, 1)
		assert.Empty(t, mailer.sent[0].Attachments)
	})

	t.Run("send failure still removes the report", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection refused")
		mailer := &fakeMailer{err: boom}
		opts := validOptions()
		opts.Report = "json"
		n, dir := newTestNotifier(t, opts, mailer)
		summary, results := testSummary()

		err := n.Notify(context.Background(), summary, results)
		require.ErrorIs(t, err, boom)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
