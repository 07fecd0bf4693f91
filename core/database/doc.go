// Package database opens the catalog database through GORM.
//
// Connect supports MySQL for shared deployments and SQLite for local runs
// and tests. TableColumns and MissingColumns inspect a live schema; the
// catalog uses them to verify its tables before trusting stored records.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logg.Warn("catalog unavailable", zap.Error(err))
//	}
//
//	missing, err := database.MissingColumns(db, "scene_objects", []string{"id", "kind"})
package database
