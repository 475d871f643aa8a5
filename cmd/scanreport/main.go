// Package main provides the entry point for the scanreport CLI.
//
// scanreport turns a recorded web-application scan into reports: it runs
// the report plugins over the scan snapshot, renders HTML, text, Markdown,
// JSON or YAML documents, archives them and can e-mail a notification.
//
// Usage:
//
//	scanreport render scan.yaml --format html,text
//	scanreport validate
//	scanreport history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
