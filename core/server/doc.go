// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application; this package only defines
// the settings it reads: the listen port, the API key checked by the auth
// middleware and the upload size limit for manifests.
package server
