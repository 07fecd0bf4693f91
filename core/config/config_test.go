package config

import (
	"os"
	"path/filepath"
	"testing"

	"scene-publisher/core/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/Game/Imports", cfg.Import.Destination)
	assert.Equal(t, 8192, cfg.Import.MaxTextureSize)
	assert.Empty(t, cfg.Import.Policies)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvAndFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "import:\n  scene_mode: assets-only\n  max_texture_size: 2048\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yaml), 0o644))
	t.Setenv("IMPORT_MAX_TEXTURE_SIZE", "512")
	t.Setenv("IMPORT_POLICIES", "Material=overwrite,Texture=ignore")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "assets-only", cfg.Import.SceneMode)
	assert.Equal(t, 512, cfg.Import.MaxTextureSize, "environment wins over the file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"Material=overwrite", "Texture=ignore"}, cfg.Import.Policies)

	opts, err := cfg.Import.Options()
	require.NoError(t, err)
	assert.Equal(t, importer.AssetsOnly, opts.SceneMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative destination", func(c *Config) { c.Import.Destination = "Game" }, "must be absolute"},
		{"bad mode", func(c *Config) { c.Import.SceneMode = "sideways" }, "unknown scene mode"},
		{"upload without bucket", func(c *Config) {
			c.Import.UploadTextures = true
			c.Storage.Bucket = ""
		}, "bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(t.TempDir())
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
