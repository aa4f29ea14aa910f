// Package sidecar reads the per-archive metadata documents that decide
// whether an archive must be protected.
//
// A sidecar lives next to its archive in a hidden metadata folder
// (".ts/<archive-name>.json" by default, the TagSpaces convention) and holds
// an ordered list of tag objects. The loader never fails: a missing or
// malformed sidecar is reported through the logger and treated as absent.
package sidecar
