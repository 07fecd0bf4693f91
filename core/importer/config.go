package importer

import (
	"fmt"

	"scene-publisher/core/object"
)

// Config holds the import settings read from the environment.
type Config struct {
	// Destination is the namespace assets are published into.
	Destination string `mapstructure:"destination" default:"/Game/Imports"`
	// SceneMode is new-world, current-world or assets-only.
	SceneMode string `mapstructure:"scene_mode" default:"new-world"`
	// World is the target world in current-world mode.
	World string `mapstructure:"world" default:""`
	// Policies are kind=policy pairs, e.g. Material=overwrite.
	Policies []string `mapstructure:"policies" default:""`
	// IgnoreActors lists actor kinds left out of every pass.
	IgnoreActors []string `mapstructure:"ignore_actors" default:""`
	// RespawnDeleted brings back managed actors the user deleted.
	RespawnDeleted bool `mapstructure:"respawn_deleted" default:"false"`
	// Workers bounds the worker pool. Zero uses GOMAXPROCS.
	Workers int `mapstructure:"workers" default:"0"`
	// MaxTextureSize clamps texture dimensions.
	MaxTextureSize int `mapstructure:"max_texture_size" default:"8192"`
	// MaxPathLength is the advisory path length limit.
	MaxPathLength int `mapstructure:"max_path_length" default:"260"`
	// CacheTTLSeconds is the lifetime of asset index snapshots.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// UploadTextures publishes texture payloads to object storage.
	UploadTextures bool `mapstructure:"upload_textures" default:"false"`
}

// Options converts the configuration into pass options.
func (c Config) Options() (Options, error) {
	opts := DefaultOptions()
	mode, err := ParseSceneMode(c.SceneMode)
	if err != nil {
		return Options{}, err
	}
	opts.SceneMode = mode
	opts.World = object.Path(c.World)
	if opts.Conflicts, err = ParsePolicies(c.Policies); err != nil {
		return Options{}, err
	}
	if len(c.IgnoreActors) > 0 {
		opts.Actors = make(map[object.Kind]ActorPolicy, len(c.IgnoreActors))
		for _, k := range c.IgnoreActors {
			kind := object.Kind(k)
			if !kind.IsActor() {
				return Options{}, fmt.Errorf("ignore actors: %q is not an actor kind", k)
			}
			opts.Actors[kind] = ActorIgnore
		}
	}
	opts.RespawnDeleted = c.RespawnDeleted
	opts.Workers = c.Workers
	if c.MaxTextureSize > 0 {
		opts.MaxTextureSize = c.MaxTextureSize
	}
	if c.MaxPathLength > 0 {
		opts.MaxPathLength = c.MaxPathLength
	}
	return opts, nil
}
