// Package database provides the SQLite report archive.
//
// The archive stores, per rendered scan:
//   - the scan summary and every plugin payload, so the scan can be
//     rendered again later in any format
//   - each generated document with its SHA3-256 digest, so a retrieved
//     document can be checked against what was written
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the archive is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets the history command read while a render writes
package database
