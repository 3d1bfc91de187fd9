package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/config"
	"go.uber.org/zap"
)

func TestPublicObjectURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.StorageConfig
		path     string
		expected string
	}{
		{
			name:     "public base url",
			cfg:      config.StorageConfig{PublicBaseURL: "https://media.usbest.app/", Bucket: "ugc"},
			path:     "ugc/7/1-a.jpg",
			expected: "https://media.usbest.app/ugc/7/1-a.jpg",
		},
		{
			name:     "endpoint with ssl",
			cfg:      config.StorageConfig{Endpoint: "s3.example.com", Bucket: "usbest-ugc", UseSSL: true},
			path:     "/ugc/7/1-a.jpg",
			expected: "https://s3.example.com/usbest-ugc/ugc/7/1-a.jpg",
		},
		{
			name:     "endpoint without ssl",
			cfg:      config.StorageConfig{Endpoint: "localhost:9000", Bucket: "dev"},
			path:     "ugc/1/x.png",
			expected: "http://localhost:9000/dev/ugc/1/x.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PublicObjectURL(tt.cfg, tt.path))
		})
	}
}

func TestMinioPresignUpload(t *testing.T) {
	cfg := config.StorageConfig{
		Endpoint:     "localhost:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "usbest-ugc",
		Region:       "us-east-1",
		UploadURLTTL: 10 * time.Minute,
	}
	storage, err := NewMinioStorageService(cfg, zap.NewNop())
	require.NoError(t, err)

	// Presigning is computed locally once the region is known.
	uploadURL, expiresAt, err := storage.PresignUpload(context.Background(), "ugc/7/123-abc.jpg")
	require.NoError(t, err)

	parsed, err := url.Parse(uploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", parsed.Host)
	assert.True(t, strings.HasSuffix(parsed.Path, "/usbest-ugc/ugc/7/123-abc.jpg"))
	assert.Equal(t, "600", parsed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
}
