// Package plugin runs the analyses that turn a recorded scan into plugin
// results.
//
// A Plugin reads the scan snapshot and produces one payload.Value. The
// Pipeline runs plugins in order and collects their payloads into a
// model.PluginResults, which report generators consume without knowing
// what any plugin produced.
//
// Design decision: We run plugins sequentially rather than in parallel
// because result order is the order sections appear in every report, and
// the built-in analyses are cheap passes over data already in memory.
package plugin
