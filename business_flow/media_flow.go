package businessflow

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/services"
	"github.com/usbest/usbest-backend/models"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

// MediaFlow signs direct UGC uploads to object storage
type MediaFlow interface {
	InitUGCUpload(ctx context.Context, req *dto.InitUGCUploadRequest) (*dto.InitUGCUploadResponse, error)
}

// MediaFlowImpl implements MediaFlow
type MediaFlowImpl struct {
	ads     adLoader
	storage services.StorageService
	logger  *zap.Logger
	now     func() time.Time
}

// NewMediaFlow creates a new media flow; adCache may be nil
func NewMediaFlow(adRepo repository.AdRepository, adCache AdCache, storage services.StorageService, logger *zap.Logger) MediaFlow {
	return &MediaFlowImpl{
		ads:     adLoader{repo: adRepo, cache: adCache},
		storage: storage,
		logger:  logger,
		now:     utils.UTCNow,
	}
}

var allowedUGCExts = map[string]models.UGCType{
	".jpg":  models.UGCTypeImage,
	".jpeg": models.UGCTypeImage,
	".png":  models.UGCTypeImage,
	".gif":  models.UGCTypeImage,
	".webp": models.UGCTypeImage,
	".mp4":  models.UGCTypeVideo,
	".mov":  models.UGCTypeVideo,
	".webm": models.UGCTypeVideo,
}

func allowedUGCFormats() string {
	exts := make([]string, 0, len(allowedUGCExts))
	for ext := range allowedUGCExts {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// InitUGCUpload returns a presigned PUT URL and the media URL to submit with the UGC afterwards
func (f *MediaFlowImpl) InitUGCUpload(ctx context.Context, req *dto.InitUGCUploadRequest) (_ *dto.InitUGCUploadResponse, err error) {
	defer func() { observe("init_ugc_upload", err) }()

	if err := requireUser(req.UserID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(req.FileName)))
	mediaType, ok := allowedUGCExts[ext]
	if !ok {
		return nil, NewBusinessErrorf("UNSUPPORTED_MEDIA_TYPE", "Allowed file types: %s", ErrUnsupportedMediaType, allowedUGCFormats())
	}

	if _, err := f.ads.participationTarget(ctx, req.AdID, models.ParticipationUGC); err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("ugc/%d/%d-%s%s", req.UserID, f.now().UnixMilli(), uuid.NewString(), ext)

	uploadURL, expiresAt, err := f.storage.PresignUpload(ctx, objectPath)
	if err != nil {
		f.logger.Error("failed to presign ugc upload",
			zap.Uint("user_id", req.UserID),
			zap.String("object_path", objectPath),
			zap.Error(err),
		)
		return nil, NewBusinessError("INIT_UPLOAD_FAILED", "Failed to prepare upload", err)
	}

	return &dto.InitUGCUploadResponse{
		Message:    "Upload URL created",
		UploadURL:  uploadURL,
		ObjectPath: objectPath,
		MediaURL:   f.storage.PublicURL(objectPath),
		MediaType:  string(mediaType),
		ExpiresAt:  formatTime(expiresAt),
	}, nil
}
