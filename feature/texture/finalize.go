package texture

import (
	"bytes"
	"context"
	"fmt"

	"scene-publisher/core/importer"
	"scene-publisher/core/object"
	"scene-publisher/core/storage"

	"github.com/minio/minio-go/v7"
)

// Publisher uploads published texture payloads to object storage.
type Publisher struct {
	client storage.Client
	bucket string
}

// NewPublisher creates a publisher writing into bucket.
func NewPublisher(client storage.Client, bucket string) *Publisher {
	return &Publisher{client: client, bucket: bucket}
}

// Key returns the object key a texture payload is stored under.
func Key(o *object.Object) string {
	return fmt.Sprintf("textures/%s.%s", o.ID, o.Str("Format"))
}

// Publish uploads the payload of o and returns its storage URI.
func (p *Publisher) Publish(ctx context.Context, o *object.Object) (string, error) {
	key := Key(o)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(o.Payload), int64(len(o.Payload)), minio.PutObjectOptions{
		ContentType: MIME(o.Payload),
	})
	if err != nil {
		return "", fmt.Errorf("upload texture payload: %w", err)
	}
	return StorageScheme + p.bucket + "/" + key, nil
}

// Finalize publishes the staged textures allowed by valid. When pub is set,
// payloads are uploaded after publish and their URI recorded on the asset;
// an upload failure is a warning.
func Finalize(ctx context.Context, ic *importer.Context, valid importer.Subset, pub *Publisher) []*object.Object {
	return ic.FinalizeMap(ctx, Stage, importer.AreaTextures, ic.Textures, valid, func(_, final *object.Object) error {
		if pub == nil || len(final.Payload) == 0 {
			return nil
		}
		uri, err := pub.Publish(ctx, final)
		if err != nil {
			return err
		}
		final.Set("PayloadURI", object.String(uri))
		return nil
	})
}
