package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"scene-publisher/core/database"
	"scene-publisher/core/importer"
	"scene-publisher/core/logger"
	"scene-publisher/core/server"
	"scene-publisher/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the optional configuration file looked up next to .env.
const FileName = "config.yaml"

// Config holds all configuration of the publisher, one section per concern.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage that receives
	// texture payloads and serves s3:// texture sources.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the catalog database.
	Database database.Config `mapstructure:"database"`
	// Import holds the defaults of import passes.
	Import importer.Config `mapstructure:"import"`
}

// LoadConfig reads the configuration found in dir. Values come, by
// precedence, from the environment, a .env file, config.yaml and the
// default tags of the section structs.
func LoadConfig(dir string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")

	file := filepath.Join(dir, FileName)
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	}

	// SERVER_PORT maps to server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that only fail once a pass starts.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Import.Options(); err != nil {
		errs = append(errs, fmt.Errorf("import: %w", err))
	}
	if !strings.HasPrefix(c.Import.Destination, "/") {
		errs = append(errs, fmt.Errorf("import: destination %q must be absolute", c.Import.Destination))
	}
	if c.Import.UploadTextures && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage: bucket is required to upload textures"))
	}
	return errors.Join(errs...)
}

// setDefaults registers every mapstructure key of t with its default tag.
// Keys must be registered, even with an empty default, for AutomaticEnv to
// find them during Unmarshal.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
