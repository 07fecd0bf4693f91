package storage_test

import (
	"context"
	"errors"
	"testing"

	"scene-publisher/core/storage"
	"scene-publisher/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"ValidConfig", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "textures", Region: "us-east-1"}},
		{"EndpointWithHTTP", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"EndpointWithHTTPS", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "textures").Return(true, nil)
		assert.NoError(t, storage.EnsureBucket(ctx, m, "textures", ""))
		m.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "textures").Return(false, nil)
		m.On("MakeBucket", mock.Anything, "textures", mock.Anything).Return(nil)
		assert.NoError(t, storage.EnsureBucket(ctx, m, "textures", "eu-west-1"))
		m.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "textures").Return(false, errors.New("dial tcp: refused"))
		assert.ErrorContains(t, storage.EnsureBucket(ctx, m, "textures", ""), "check bucket textures")
	})
}
