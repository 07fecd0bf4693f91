// Package actor stages the actor hierarchy of a scene and reconciles it with
// the destination world.
//
// Every (world, scene) pair has one scene anchor. The anchor's managed map,
// stable ID to weak actor reference, is the only record of which actors an
// import owns in a world. Finalize looks the anchor up, builds a Plan that
// classifies every managed actor, applies it and then deletes the actors
// the scene no longer has.
//
// Actors are reconciled in place: an existing actor keeps its identity, its
// editable properties go through the template diff so user edits survive,
// and the remaining properties are bulk copied. Components are matched by
// stable ID, or by name for components the import never tracked.
package actor
