// Package manifest reads and rewrites package manifests (package.json files).
//
// Manifests are parsed with github.com/tidwall/jsonc before standard JSON
// decoding so comment-bearing files survive the pipeline unchanged in meaning.
package manifest
