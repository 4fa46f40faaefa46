// Package registry provisions the ephemeral verdaccio instance the packaging
// pipeline publishes against, along with the temporary npm credential file
// authorizing publishes to it. Both resources expose release functions suited
// for registration with a cleanup guard.
package registry
