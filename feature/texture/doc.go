// Package texture stages and publishes texture assets.
//
// Import infers the usage role of every texture from the materials that
// sample it, then fetches and normalizes payloads on the worker pool:
// dimensions are snapped to powers of two and formats without a cheap
// decode path are re-encoded to png. Finalize publishes the staged assets
// and can upload their payloads to object storage.
package texture
