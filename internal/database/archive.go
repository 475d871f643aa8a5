package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
	"github.com/nao1215/scanreport/internal/report"
)

// FileName is the archive's file name inside its directory.
const FileName = "scanreport.db"

var (
	// ErrNotFound is returned when a scan or document is not archived.
	ErrNotFound = errors.New("not found in archive")

	// ErrDigestMismatch is returned when stored content no longer matches
	// the digest recorded when it was saved.
	ErrDigestMismatch = errors.New("archived document digest mismatch")
)

// Archive stores rendered scans and their documents.
type Archive struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the archive in dbDir.
func Open(dbDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("archive not found at %s: %w", dbPath, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := a.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return a, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.dbPath
}

func (a *Archive) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		started_at TEXT,
		finished_at TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		issues INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL,
		results_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_target ON scans(target);

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		format TEXT NOT NULL,
		digest TEXT NOT NULL,
		size INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL DEFAULT 0,
		content BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(scan_id, format)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_scan ON documents(scan_id);
	`
	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// ScanRecord describes an archived scan.
type ScanRecord struct {
	ID         int64
	Target     string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Issues     int
	Pages      int
	Documents  int
	CreatedAt  time.Time
}

// DocumentRecord describes an archived document. Content is only filled
// by GetDocument.
type DocumentRecord struct {
	ID          int64
	ScanID      int64
	Format      format.Format
	Digest      string
	Size        int64
	Diagnostics int
	CreatedAt   time.Time
	Content     []byte
}

// Digest returns the hex SHA3-256 digest recorded for archived content.
func Digest(content []byte) string {
	sum := sha3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SaveScan archives summary and results and returns the new scan's ID.
func (a *Archive) SaveScan(ctx context.Context, summary *model.ScanSummary, results *model.PluginResults) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	resultsJSON, err := marshalResults(results)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize plugin results: %w", err)
	}

	query := `
	INSERT INTO scans (target, started_at, finished_at, duration_ms, issues, pages, summary_json, results_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := a.db.ExecContext(ctx, query,
		summary.Target,
		formatTimestamp(summary.StartedAt),
		formatTimestamp(summary.FinishedAt),
		summary.Duration.Milliseconds(),
		summary.TotalIssues(),
		summary.PagesAudited,
		string(summaryJSON),
		string(resultsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan: %w", err)
	}
	return res.LastInsertId()
}

// LoadScan restores an archived scan for rendering.
func (a *Archive) LoadScan(ctx context.Context, id int64) (*model.ScanSummary, *model.PluginResults, error) {
	query := `SELECT duration_ms, summary_json, results_json FROM scans WHERE id = ?`

	var (
		durationMS               int64
		summaryJSON, resultsJSON string
	)
	err := a.db.QueryRowContext(ctx, query, id).Scan(&durationMS, &summaryJSON, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("scan %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load scan: %w", err)
	}

	var summary model.ScanSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, nil, fmt.Errorf("failed to parse archived summary: %w", err)
	}
	summary.Duration = time.Duration(durationMS) * time.Millisecond

	results, err := unmarshalResults([]byte(resultsJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse archived plugin results: %w", err)
	}
	return &summary, results, nil
}

// ListScans returns archived scans, newest first. An empty target lists
// every target.
func (a *Archive) ListScans(ctx context.Context, target string) ([]ScanRecord, error) {
	query := `
	SELECT s.id, s.target, s.started_at, s.finished_at, s.duration_ms, s.issues, s.pages,
		s.created_at, COUNT(d.id)
	FROM scans s LEFT JOIN documents d ON d.scan_id = s.id
	WHERE ? = '' OR s.target = ?
	GROUP BY s.id
	ORDER BY s.id DESC
	`
	rows, err := a.db.QueryContext(ctx, query, target, target)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var (
			r                 ScanRecord
			started, finished sql.NullString
			created           string
			durationMS        int64
		)
		if err := rows.Scan(&r.ID, &r.Target, &started, &finished, &durationMS,
			&r.Issues, &r.Pages, &created, &r.Documents); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.StartedAt = parseTimestamp(started.String)
		r.FinishedAt = parseTimestamp(finished.String)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = parseTimestamp(created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteScan removes a scan and its documents.
func (a *Archive) DeleteScan(ctx context.Context, id int64) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("scan %d: %w", id, ErrNotFound)
	}
	return nil
}

// SaveDocument archives doc for scanID, replacing an earlier document in
// the same format.
func (a *Archive) SaveDocument(ctx context.Context, scanID int64, doc *report.Document) (*DocumentRecord, error) {
	rec := &DocumentRecord{
		ScanID:      scanID,
		Format:      doc.Format,
		Digest:      Digest(doc.Content),
		Size:        int64(len(doc.Content)),
		Diagnostics: len(doc.Diagnostics),
	}

	query := `
	INSERT INTO documents (scan_id, format, digest, size, diagnostics, content)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(scan_id, format) DO UPDATE SET
		digest = excluded.digest,
		size = excluded.size,
		diagnostics = excluded.diagnostics,
		content = excluded.content,
		created_at = CURRENT_TIMESTAMP
	RETURNING id
	`
	err := a.db.QueryRowContext(ctx, query,
		scanID, doc.Format.String(), rec.Digest, rec.Size, rec.Diagnostics, doc.Content,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s document: %w", doc.Format, err)
	}
	return rec, nil
}

// ListDocuments returns the documents of scanID without content, ordered
// by format.
func (a *Archive) ListDocuments(ctx context.Context, scanID int64) ([]DocumentRecord, error) {
	query := `
	SELECT id, scan_id, format, digest, size, diagnostics, created_at
	FROM documents WHERE scan_id = ?
	ORDER BY format
	`
	rows, err := a.db.QueryContext(ctx, query, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var (
			r       DocumentRecord
			f       string
			created string
		)
		if err := rows.Scan(&r.ID, &r.ScanID, &f, &r.Digest, &r.Size, &r.Diagnostics, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Format = format.Format(f)
		r.CreatedAt = parseTimestamp(created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetDocument returns the archived document of scanID in f and verifies
// its digest.
func (a *Archive) GetDocument(ctx context.Context, scanID int64, f format.Format) (*DocumentRecord, error) {
	query := `
	SELECT id, scan_id, format, digest, size, diagnostics, created_at, content
	FROM documents WHERE scan_id = ? AND format = ?
	`
	var (
		r       DocumentRecord
		fs      string
		created string
	)
	err := a.db.QueryRowContext(ctx, query, scanID, f.String()).Scan(
		&r.ID, &r.ScanID, &fs, &r.Digest, &r.Size, &r.Diagnostics, &created, &r.Content,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s document of scan %d: %w", f, scanID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	r.Format = format.Format(fs)
	r.CreatedAt = parseTimestamp(created)

	if got := Digest(r.Content); got != r.Digest {
		return nil, fmt.Errorf("%w: scan %d %s: recorded %s, computed %s", ErrDigestMismatch, scanID, f, r.Digest, got)
	}
	return &r, nil
}

// marshalResults encodes results as one JSON object keyed by plugin in
// result order.
func marshalResults(results *model.PluginResults) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if results != nil {
		first := true
		for plugin, p := range results.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false

			key, err := json.Marshal(plugin)
			if err != nil {
				return nil, err
			}
			body, err := p.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("plugin %s: %w", plugin, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(body)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unmarshalResults reverses marshalResults. JSON is decoded as YAML so
// plugin and payload key order survive.
func unmarshalResults(data []byte) (*model.PluginResults, error) {
	v, err := payload.DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	results := model.NewPluginResults()
	for plugin, p := range v.Entries() {
		if err := results.Add(plugin, p); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats are the layouts SQLite and formatTimestamp produce,
// most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when s matches no known layout.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
