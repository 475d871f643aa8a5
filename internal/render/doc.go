// Package render defines the contract between report generators and the
// per-plugin formatters that turn a plugin's result payload into a
// fragment of one output format.
//
// A Formatter is bound to exactly one (format, plugin) pair through the
// registry package. Generators never inspect payloads themselves; they
// resolve a Formatter, hand it the payload and a Context carrying the
// format's shared helpers, and embed the returned Fragment.
//
// Formatters must be pure: no I/O, no mutation of the payload, and the
// same input always yields byte-identical output.
package render
