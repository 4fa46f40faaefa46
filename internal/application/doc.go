// Package application materializes the application skeleton into the output
// directory, installs its dependencies against the ephemeral registry, and
// prunes non-essential files from the result.
package application
