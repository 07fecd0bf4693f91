// Package storage wraps the MinIO client for the object storage that holds
// texture payloads.
//
// Client is the narrow interface the publisher needs, so tests can use the
// testify mock in core/storage/mocks. NewClient accepts endpoints with or
// without a scheme and works with AWS S3 as well as self-hosted MinIO.
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket at startup.
//   - PutObject: uploads published texture payloads.
//   - GetObject: reads s3:// texture sources.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
