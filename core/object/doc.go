// Package object models the destination object graph the importer publishes
// into.
//
// Objects carry typed property bags whose importer-controlled subset is
// described by per-kind Descriptor tables. References between objects are
// Strong (remapped eagerly after publish), Weak (observational, never
// remapped) or Soft (path based, rewritten by a dedicated sweep). The Store
// interface abstracts the runtime that owns the objects.
package object
