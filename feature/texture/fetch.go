package texture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scene-publisher/core/storage"

	"github.com/minio/minio-go/v7"
)

// StorageScheme prefixes texture files stored in object storage.
const StorageScheme = "s3://"

// ErrNoSource is returned for textures with neither inline data nor a file.
var ErrNoSource = errors.New("texture has no source")

// Fetcher reads the raw bytes of a texture file. Implementations must be
// safe for concurrent use; fetches run on the worker pool.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FileFetcher reads textures from the local filesystem. Relative paths are
// resolved against Root.
type FileFetcher struct {
	Root string
}

// Fetch reads the file at uri.
func (f FileFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := uri
	if !filepath.IsAbs(p) && f.Root != "" {
		p = filepath.Join(f.Root, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read texture file: %w", err)
	}
	return data, nil
}

// StorageFetcher reads textures from object storage. URIs have the form
// s3://bucket/key; a missing bucket falls back to Bucket.
type StorageFetcher struct {
	Client storage.Client
	Bucket string
}

// Fetch downloads the object named by uri.
func (f StorageFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, key := splitURI(uri, f.Bucket)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid storage uri %q", uri)
	}
	obj, err := f.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func splitURI(uri, fallback string) (bucket, key string) {
	rest := strings.TrimPrefix(uri, StorageScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok {
		return fallback, rest
	}
	if bucket == "" {
		bucket = fallback
	}
	return bucket, key
}

// Router dispatches s3:// URIs to Storage and everything else to Files.
type Router struct {
	Files   Fetcher
	Storage Fetcher
}

// Fetch reads uri through the matching fetcher.
func (r Router) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, StorageScheme) {
		if r.Storage == nil {
			return nil, fmt.Errorf("no object storage configured for %q", uri)
		}
		return r.Storage.Fetch(ctx, uri)
	}
	if r.Files == nil {
		return nil, fmt.Errorf("no file source configured for %q", uri)
	}
	return r.Files.Fetch(ctx, uri)
}
