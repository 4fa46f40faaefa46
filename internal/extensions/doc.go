// Package extensions discovers extension package directories via glob
// patterns and publishes them to the ephemeral registry.
package extensions
