// Package importer holds the state of one import pass.
//
// A Context is created by New from a scene, a destination path and options.
// It owns the transient staging namespace, the filtered working copy of the
// scene, the per-kind element maps, the remap tables and the import log.
// Per-kind importers stage objects through it; FinalizeAsset publishes a
// staged asset with template migration; Discard drops whatever is left in
// staging once the pass is over.
//
// # Conflict policies
//
//   - Merge: user edits on covered properties survive a re-import.
//   - Overwrite: the fresh content replaces the published asset.
//   - Ignore: a published asset is left untouched and staged references to
//     it are remapped onto it.
package importer
