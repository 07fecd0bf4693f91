// Package publish exposes import passes over HTTP and to the CLI.
//
// Service owns the object graph: it loads it from the catalog (or keeps it
// in memory when no database is configured), runs one pipeline pass per
// request and saves the result. Passes are serialized; the object store has
// a single writer.
//
// # HTTP Endpoints
//
//   - POST /imports : import the manifest in the request body.
//   - GET /anchors  : list scene anchors and the actors they manage.
package publish
