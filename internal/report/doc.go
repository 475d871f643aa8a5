// Package report turns a scan summary and the plugin results into complete
// documents, one Generator per output format:
//   - HTMLGenerator: standalone HTML page for browsers
//   - TextGenerator: ruled plain text for terminals and mail bodies
//   - MarkdownGenerator: GitHub-flavored Markdown for issue trackers
//   - JSONGenerator and YAMLGenerator: structured output for tools
//
// Generators never know what a plugin produces. For each plugin result they
// resolve a formatter from a sealed registry.Registry and embed the
// fragment it returns. A missing binding, a malformed payload or a
// panicking formatter only replaces that plugin's section with a visible
// placeholder and is recorded as a Diagnostic on the Document; the rest of
// the report is always produced.
//
// Design decision: We keep document layout (headers, summary, issue
// tables) in this package and plugin layout in the formatter packages,
// so adding a plugin never touches a generator and adding a format never
// touches a plugin.
package report
