package businessflow_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/services"
	businessflow "github.com/usbest/usbest-backend/business_flow"
	"github.com/usbest/usbest-backend/config"
	testingutil "github.com/usbest/usbest-backend/testing"
	"go.uber.org/zap"
)

type fakeStorage struct {
	cfg     config.StorageConfig
	err     error
	presign []string
}

func (s *fakeStorage) PresignUpload(ctx context.Context, objectPath string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.presign = append(s.presign, objectPath)
	return "https://storage.example.com/" + objectPath + "?X-Amz-Signature=abc", time.Now().Add(15 * time.Minute), nil
}

func (s *fakeStorage) PublicURL(objectPath string) string {
	return services.PublicObjectURL(s.cfg, objectPath)
}

func (s *fakeStorage) EnsureBucket(ctx context.Context) error { return nil }

func TestInitUGCUpload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	storage := &fakeStorage{cfg: config.StorageConfig{PublicBaseURL: "https://media.example.com/"}}
	flow := businessflow.NewMediaFlow(env.adRepo, nil, storage, zap.NewNop())
	ad := env.createAd(t, 1)

	t.Run("SignsAllowedFile", func(t *testing.T) {
		resp, err := flow.InitUGCUpload(ctx, &dto.InitUGCUploadRequest{AdID: ad.ID, UserID: 7, FileName: "Holiday Clip.MP4"})
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^ugc/7/\d+-[0-9a-f-]{36}\.mp4$`), resp.ObjectPath)
		assert.Equal(t, "video", resp.MediaType)
		assert.Equal(t, "https://media.example.com/"+resp.ObjectPath, resp.MediaURL)
		assert.Contains(t, resp.UploadURL, resp.ObjectPath)
		assert.NotEmpty(t, resp.ExpiresAt)
		assert.Equal(t, []string{resp.ObjectPath}, storage.presign)
	})

	t.Run("RejectsUnknownExtension", func(t *testing.T) {
		for _, name := range []string{"script.exe", "noext", ""} {
			_, err := flow.InitUGCUpload(ctx, &dto.InitUGCUploadRequest{AdID: ad.ID, UserID: 7, FileName: name})
			require.Error(t, err)
			assert.True(t, businessflow.IsValidation(err))
			assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", businessflow.ErrorCode(err))
		}
	})

	t.Run("RequiresUGCCapability", func(t *testing.T) {
		closed := env.createAd(t, 1, testingutil.WithCapabilities(true, false, true, true))
		_, err := flow.InitUGCUpload(ctx, &dto.InitUGCUploadRequest{AdID: closed.ID, UserID: 7, FileName: "a.png"})
		assert.True(t, businessflow.IsNotFound(err))
	})

	t.Run("StorageFailure", func(t *testing.T) {
		failing := businessflow.NewMediaFlow(env.adRepo, nil, &fakeStorage{err: errors.New("signing key missing")}, zap.NewNop())
		_, err := failing.InitUGCUpload(ctx, &dto.InitUGCUploadRequest{AdID: ad.ID, UserID: 7, FileName: "a.png"})
		require.Error(t, err)
		assert.Equal(t, "INIT_UPLOAD_FAILED", businessflow.ErrorCode(err))
	})
}
