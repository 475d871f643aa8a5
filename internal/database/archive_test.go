package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/report"
)

func setupTestArchive(t *testing.T) *Archive {
	t.Helper()

	a, err := Open(t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testScan(target string) (*model.ScanSummary, *model.PluginResults) {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	summary := model.NewScanSummary(&model.Scan{
		Target:     target,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Issues: []model.Issue{
			{Name: "SQL Injection", Severity: model.SeverityHigh, URL: target + "login", Method: "POST"},
		},
		Sitemap: []string{target, target + "login"},
	})

	results := model.NewPluginResults()
	_ = results.Add(model.PluginHealthMap, payload.Map(
		payload.Pair("total", payload.Int(2)),
		payload.Pair("unsafe", payload.Int(1)),
		payload.Pair("safe", payload.Int(1)),
	))
	_ = results.Add(model.PluginContentTypes, payload.Map(
		payload.Pair("text/html", payload.Seq()),
	))
	return summary, results
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b")
		a, err := Open(dir, DefaultOptions())
		require.NoError(t, err)
		defer a.Close()

		assert.Equal(t, filepath.Join(dir, FileName), a.Path())
		_, err = os.Stat(a.Path())
		assert.NoError(t, err)
	})

	t.Run("missing archive without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a, err := Open(dir, DefaultOptions())
		require.NoError(t, err)
		summary, results := testScan("http://testfire.example/")
		_, err = a.SaveScan(context.Background(), summary, results)
		require.NoError(t, err)
		require.NoError(t, a.Close())

		b, err := Open(dir, Options{EnableWAL: true})
		require.NoError(t, err)
		defer b.Close()
		scans, err := b.ListScans(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, scans, 1)
	})
}

func TestArchive_SaveAndLoadScan(t *testing.T) {
	t.Parallel()

	a := setupTestArchive(t)
	ctx := context.Background()
	summary, results := testScan("http://testfire.example/")

	id, err := a.SaveScan(ctx, summary, results)
	require.NoError(t, err)

	gotSummary, gotResults, err := a.LoadScan(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, summary.Target, gotSummary.Target)
	assert.Equal(t, 90*time.Second, gotSummary.Duration)
	assert.True(t, summary.StartedAt.Equal(gotSummary.StartedAt))
	assert.Equal(t, summary.Issues, gotSummary.Issues)
	assert.Equal(t, 2, gotSummary.PagesAudited)

	assert.Equal(t, results.Names(), gotResults.Names())
	hm, ok := gotResults.Get(model.PluginHealthMap)
	require.True(t, ok)
	assert.Equal(t, []string{"total", "unsafe", "safe"}, hm.Keys())
	want, _ := results.Get(model.PluginHealthMap)
	assert.True(t, payload.Equal(want, hm))

	_, _, err = a.LoadScan(ctx, id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_ListScans(t *testing.T) {
	t.Parallel()

	a := setupTestArchive(t)
	ctx := context.Background()

	for _, target := range []string{"http://a.example/", "http://b.example/", "http://a.example/"} {
		summary, results := testScan(target)
		_, err := a.SaveScan(ctx, summary, results)
		require.NoError(t, err)
	}

	all, err := a.ListScans(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID, "newest first")
	assert.Equal(t, 1, all[0].Issues)
	assert.Equal(t, 2, all[0].Pages)
	assert.Equal(t, 90*time.Second, all[0].Duration)
	assert.False(t, all[0].CreatedAt.IsZero())

	onlyA, err := a.ListScans(ctx, "http://a.example/")
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)
}

func TestArchive_Documents(t *testing.T) {
	t.Parallel()

	a := setupTestArchive(t)
	ctx := context.Background()
	summary, results := testScan("http://testfire.example/")
	id, err := a.SaveScan(ctx, summary, results)
	require.NoError(t, err)

	html := &report.Document{Format: format.HTML, Content: []byte("<p>v1</p>")}
	rec, err := a.SaveDocument(ctx, id, html)
	require.NoError(t, err)
	assert.Equal(t, Digest(html.Content), rec.Digest)
	assert.Equal(t, int64(len(html.Content)), rec.Size)

	text := &report.Document{
		Format:      format.Text,
		Content:     []byte("v1"),
		Diagnostics: []report.Diagnostic{{Plugin: "x", Kind: report.DiagnosticUnregistered}},
	}
	_, err = a.SaveDocument(ctx, id, text)
	require.NoError(t, err)

	t.Run("replaces same format", func(t *testing.T) {
		_, err := a.SaveDocument(ctx, id, &report.Document{Format: format.HTML, Content: []byte("<p>v2</p>")})
		require.NoError(t, err)

		got, err := a.GetDocument(ctx, id, format.HTML)
		require.NoError(t, err)
		assert.Equal(t, "<p>v2</p>", string(got.Content))
	})

	t.Run("lists without content", func(t *testing.T) {
		docs, err := a.ListDocuments(ctx, id)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, format.HTML, docs[0].Format)
		assert.Equal(t, format.Text, docs[1].Format)
		assert.Equal(t, 1, docs[1].Diagnostics)
		assert.Nil(t, docs[0].Content)

		scans, err := a.ListScans(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 2, scans[0].Documents)
	})

	t.Run("missing format", func(t *testing.T) {
		_, err := a.GetDocument(ctx, id, format.YAML)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("detects tampering", func(t *testing.T) {
		_, err := a.db.ExecContext(ctx,
			`UPDATE documents SET content = ? WHERE scan_id = ? AND format = ?`,
			[]byte("tampered"), id, format.Text.String())
		require.NoError(t, err)

		_, err = a.GetDocument(ctx, id, format.Text)
		assert.True(t, errors.Is(err, ErrDigestMismatch))
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, a.DeleteScan(ctx, id))

		docs, err := a.ListDocuments(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.ErrorIs(t, a.DeleteScan(ctx, id), ErrNotFound)
	})
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	assert.Equal(t, "a7ffc6f8bf1ed766", Digest(nil)[:16])
	assert.Len(t, Digest([]byte("x")), 64)
	assert.NotEqual(t, Digest([]byte("x")), Digest([]byte("y")))
}
