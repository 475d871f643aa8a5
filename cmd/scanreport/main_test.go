package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// snapshotYAML is a small recorded scan used by the command tests.
const snapshotYAML = `target: https://shop.example.com
started_at: 2025-03-01T10:00:00Z
finished_at: 2025-03-01T10:01:30Z
sitemap:
  - https://shop.example.com/
  - https://shop.example.com/search?q=1
  - https://shop.example.com/login
issues:
  - name: Cross-Site Scripting (XSS)
    severity: high
    url: https://shop.example.com/search
    method: GET
    variable: q
    description: Unvalidated input is echoed in the page.
    remedy: Encode output.
responses:
  - url: https://shop.example.com/
    method: GET
    status: 200
    content_type: text/html; charset=utf-8
  - url: https://shop.example.com/search?q=1
    method: GET
    status: 200
    content_type: text/html
    params:
      q: "1"
  - url: https://shop.example.com/logo.png
    method: GET
    status: 200
    content_type: image/png
`

// externalPlugin is appended to snapshotYAML to add a result that only the
// data formats can render.
const externalPlugin = `plugins:
  - name: screenshots
    result:
      count: 2
`

// writeSnapshot writes content to a snapshot file in a temporary directory.
func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// emptyConfig writes an empty configuration file so tests never pick up a
// file from the working or home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".scanreport")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its output streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
