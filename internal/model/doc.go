// Package model defines the scan data that report generation consumes.
//
// This package contains the following main types:
//   - Scan: A recorded, finished scan loaded from a snapshot file
//   - Issue: One vulnerability found by an audit module
//   - Response: One HTTP response recorded by the crawler
//   - ScanSummary: The scan-wide header every report starts with
//   - PluginResults: Plugin outputs in execution order
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The plugin, report and notify packages all need these types,
// so centralizing them prevents import cycles.
package model
