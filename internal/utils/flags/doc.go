// Package flags provides helpers for binding standardized toggle flags to Cobra commands.
package flags
