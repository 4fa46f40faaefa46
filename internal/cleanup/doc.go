// Package cleanup tracks disposable resources allocated while packaging an
// application and guarantees their release on completion, failure, and
// interrupt signals.
package cleanup
