// Package mesh stages, publishes and builds static meshes.
//
// Geometry comes from a Translator. Publishing and building are separate:
// every mesh of a pass is published before the first build starts, and the
// builds run together on the worker pool.
package mesh
