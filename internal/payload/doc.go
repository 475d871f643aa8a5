// Package payload defines the format-agnostic value that a scanner plugin
// produces as its result.
//
// A Value is a small tagged union over null, string, number, boolean,
// ordered sequences and ordered keyed mappings. Plugins are free to shape
// the tree however they like; renderers navigate it with the typed
// accessors, which fail with ErrMalformed when the expected structure is
// absent.
//
// Design decision: We keep numbers as their decimal text rather than
// converting them to float64. Reports must show statistics exactly as the
// plugin computed them ("30", not "30.000000"), and round-tripping through
// a float would change the rendered digits for some inputs.
//
// Values are immutable once built. Accessors that expose child slices
// return copies, so a renderer cannot modify the scan's recorded results.
package payload
