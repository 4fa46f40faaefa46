// Package bundle implements the packaging pipeline: it provisions an
// ephemeral verdaccio registry, publishes the workspace's extension packages
// into it, materializes the application skeleton, installs dependencies
// against the registry, and prunes the result. Every ephemeral resource is
// registered with a cleanup guard so teardown runs on success, failure, and
// interrupt alike.
package bundle
