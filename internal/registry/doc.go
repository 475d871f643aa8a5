// Package registry resolves (output format, plugin identity) pairs to
// formatter factories.
//
// The registry is populated during single-threaded startup and sealed the
// first time anything is resolved. After sealing, registration fails with
// ErrSealed and lookups need no locking, which lets concurrent report
// generations share one registry.
//
// Design decision: We seal with sync.Once instead of guarding every lookup
// with a RWMutex. Lookups dominate by orders of magnitude, and an explicit
// barrier also turns "registered a formatter too late" into a visible error
// rather than a race that only sometimes takes effect.
package registry
