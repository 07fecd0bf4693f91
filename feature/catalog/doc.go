// Package catalog persists the object graph between import passes.
//
// Every object of the store is kept as one row of the scene_objects table:
// identity, placement and change-detection columns for querying, plus the
// whole object encoded as JSON. A pass loads the graph, runs against the
// in-memory store and saves it back in one transaction.
//
// # Asset Index
//
// Index answers the change-detection lookups of the import filter from the
// saved rows. Rows are read once into a snapshot that lives for a TTL;
// concurrent rebuilds collapse into one query through singleflight. Saving
// invalidates the snapshot.
//
// # Usage
//
//	cat := catalog.New(db, time.Minute, logg)
//	if err := cat.Migrate(ctx); err != nil {
//	    return err
//	}
//	store, err := cat.Load(ctx)
//	// run the pass with cat.Index()
//	_, err = cat.Save(ctx, store)
package catalog
