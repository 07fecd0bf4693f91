// Package middleware groups the HTTP middleware of the Fiber application.
//
//   - auth: API key validation on every route behind it.
//   - rayid: a request ID stored in the context locals and echoed in the
//     X-Ray-ID header, picked up by logger.WithRayID.
package middleware
