// Package loader registers the feature modules of the HTTP API.
//
// Each feature implements Feature; the start command registers them with a
// Manager and LoadAll mounts the enabled ones.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
