// Package config loads the publisher configuration.
//
// It uses Viper over environment variables, an optional .env file (through
// godotenv) and an optional config.yaml. Defaults live in the `default` tags
// of each section struct, next to the package that consumes the section.
//
// # Sections
//
//   - Server: HTTP port, API key and upload limit
//   - Storage: S3/MinIO credentials and bucket for texture payloads
//   - Log: level and format
//   - Database: catalog connection (sqlite or mysql)
//   - Import: destination, scene mode, conflict policies and limits
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts, err := cfg.Import.Options()
package config
