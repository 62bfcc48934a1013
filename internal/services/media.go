package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
)

const (
	maxImageBytes = 5 << 20   // 5MB
	maxVideoBytes = 100 << 20 // 100MB
)

var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type UploadKind string

const (
	UploadKindImage UploadKind = "image"
	UploadKindVideo UploadKind = "video"
)

// ProgressFunc receives upload progress as a 0-100 percentage.
type ProgressFunc func(percent int)

type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type MediaService interface {
	Upload(ctx context.Context, kind UploadKind, filename, contentType string, size int64, file io.Reader, onProgress ProgressFunc) (*UploadResult, error)
}

type mediaService struct {
	log    *logger.Logger
	bucket BucketService
}

func NewMediaService(log *logger.Logger, bucket BucketService) MediaService {
	return &mediaService{
		log:    log.With("service", "MediaService"),
		bucket: bucket,
	}
}

func (ms *mediaService) Upload(ctx context.Context, kind UploadKind, filename, contentType string, size int64, file io.Reader, onProgress ProgressFunc) (*UploadResult, error) {
	if err := checkUploadConstraints(kind, contentType, size); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	reader := io.Reader(file)
	if onProgress != nil && size > 0 {
		reader = &progressReader{r: file, total: size, onProgress: onProgress}
	}

	// The bucket call carries its own timeout; upload failures are transient
	// from the editor's point of view.
	if err := ms.bucket.UploadFile(ctx, key, contentType, reader); err != nil {
		return nil, apperr.Transient("media_upload", err)
	}
	if onProgress != nil {
		onProgress(100)
	}

	url := ms.bucket.GetPublicURL(key)
	ms.log.Info("media uploaded", "kind", kind, "key", key, "bytes", size)
	return &UploadResult{URL: url, Key: key}, nil
}

func checkUploadConstraints(kind UploadKind, contentType string, size int64) error {
	switch kind {
	case UploadKindImage:
		if !imageContentTypes[contentType] {
			return apperr.Validation("unsupported_image_type", fmt.Errorf("unsupported image type %q", contentType))
		}
		if size <= 0 || size > maxImageBytes {
			return apperr.Validation("image_too_large", fmt.Errorf("image must be between 1 byte and 5MB"))
		}
	case UploadKindVideo:
		if !strings.HasPrefix(contentType, "video/") {
			return apperr.Validation("unsupported_video_type", fmt.Errorf("unsupported video type %q", contentType))
		}
		if size <= 0 || size > maxVideoBytes {
			return apperr.Validation("video_too_large", fmt.Errorf("video must be between 1 byte and 100MB"))
		}
	default:
		return apperr.Validation("unknown_upload_kind", fmt.Errorf("unknown upload kind %q", kind))
	}
	return nil
}

type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	lastPct    int
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.read += int64(n)
		pct := int(pr.read * 100 / pr.total)
		if pct > 100 {
			pct = 100
		}
		if pct != pr.lastPct {
			pr.lastPct = pct
			pr.onProgress(pct)
		}
	}
	return n, err
}
