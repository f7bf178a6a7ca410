package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ummahtube/internal/config"
	"ummahtube/internal/models"
	"ummahtube/internal/observability"
	"ummahtube/internal/repository"
	"ummahtube/internal/storage"

	"gorm.io/gorm"
)

const (
	DefaultVideoMaxUploadSizeMB     = 512
	DefaultThumbnailMaxUploadSizeMB = 5
)

type UploadVideoInput struct {
	UserID          uint
	Title           string
	Description     string
	Category        string
	DurationSeconds int

	Filename    string
	ContentType string
	Content     []byte

	ThumbnailFilename    string
	ThumbnailContentType string
	Thumbnail            []byte
}

// UploadService accepts raw video files, stores them in object storage and
// drives queued videos to the ready state in the background.
type UploadService struct {
	videoRepo          repository.VideoRepository
	store              storage.ObjectStore
	maxUploadSizeBytes int64
	workerOnce         sync.Once
}

func NewUploadService(videoRepo repository.VideoRepository, store storage.ObjectStore, cfg *config.Config) *UploadService {
	maxUploadSizeMB := DefaultVideoMaxUploadSizeMB
	if cfg != nil && cfg.VideoMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.VideoMaxUploadSizeMB
	}
	return &UploadService{
		videoRepo:          videoRepo,
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

func (s *UploadService) StartBackgroundWorker(ctx context.Context) {
	if s.videoRepo == nil {
		return
	}
	s.workerOnce.Do(func() {
		go s.workerLoop(ctx)
	})
}

func (s *UploadService) Upload(ctx context.Context, in UploadVideoInput) (*models.Video, error) {
	if in.UserID == 0 {
		return nil, rejectUpload("Invalid user")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, rejectUpload("Title is required")
	}
	if len(in.Title) > maxVideoTitleLen {
		return nil, rejectUpload("Title too long (max 200 characters)")
	}
	if len(in.Description) > maxVideoDescriptionLen {
		return nil, rejectUpload("Description too long (max 5000 characters)")
	}
	if err := validateCategory(in.Category); err != nil {
		observability.VideoUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if len(in.Content) == 0 {
		return nil, rejectUpload("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, rejectUpload(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	contentType, ext, ok := resolveVideoType(in.Content, in.ContentType, in.Filename)
	if !ok {
		return nil, rejectUpload("Invalid video type")
	}

	var thumbType, thumbExt string
	if len(in.Thumbnail) > 0 {
		if int64(len(in.Thumbnail)) > DefaultThumbnailMaxUploadSizeMB*1024*1024 {
			return nil, rejectUpload(fmt.Sprintf("Thumbnail too large (max %dMB)", DefaultThumbnailMaxUploadSizeMB))
		}
		var thumbOK bool
		thumbType, thumbExt, thumbOK = resolveThumbnailType(in.Thumbnail)
		if !thumbOK {
			return nil, rejectUpload("Invalid thumbnail type")
		}
	}

	video := &models.Video{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Category:        NormalizeCategory(in.Category),
		DurationSeconds: in.DurationSeconds,
		Status:          models.VideoStatusQueued,
		UserID:          in.UserID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		observability.VideoUploadsTotal.WithLabelValues("failed").Inc()
		return nil, models.NewInternalError(err)
	}

	key := storage.VideoObjectKey(in.UserID, video.ID, ext)
	url, err := s.store.Put(ctx, key, bytes.NewReader(in.Content), int64(len(in.Content)), contentType)
	if err != nil {
		observability.VideoUploadsTotal.WithLabelValues("failed").Inc()
		if ferr := s.videoRepo.MarkFailed(ctx, video.ID); ferr != nil {
			log.Printf("ERROR: failed to mark video %d as failed: %v (original error: %v)", video.ID, ferr, err)
		}
		return nil, models.NewInternalError(err)
	}

	video.VideoURL = url
	video.ObjectKey = key

	if len(in.Thumbnail) > 0 {
		thumbKey := storage.ThumbnailObjectKey(in.UserID, video.ID, thumbExt)
		thumbURL, err := s.store.Put(ctx, thumbKey, bytes.NewReader(in.Thumbnail), int64(len(in.Thumbnail)), thumbType)
		if err != nil {
			// The video itself landed; a missing thumbnail is recoverable.
			log.Printf("WARN: failed to store thumbnail for video %d: %v", video.ID, err)
		} else {
			video.ThumbnailURL = thumbURL
		}
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		observability.VideoUploadsTotal.WithLabelValues("failed").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.VideoUploadsTotal.WithLabelValues("accepted").Inc()
	return video, nil
}

func rejectUpload(message string) error {
	observability.VideoUploadsTotal.WithLabelValues("rejected").Inc()
	return models.NewValidationError(message)
}

var videoExtByType = map[string]string{
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"video/quicktime":  ".mov",
	"video/x-matroska": ".mkv",
}

// resolveVideoType settles on a content type and object key extension.
// Sniffed bytes win over the declared type; quicktime and matroska sniff as
// octet-stream so the declared type is trusted for those.
func resolveVideoType(content []byte, declared, filename string) (contentType, ext string, ok bool) {
	detected := normalizeMediaType(http.DetectContentType(content))
	if strings.HasPrefix(detected, "video/") {
		if e, known := videoExtByType[detected]; known {
			return detected, e, true
		}
		return "", "", false
	}

	declared = normalizeMediaType(declared)
	if e, known := videoExtByType[declared]; known {
		if fe := strings.ToLower(filepath.Ext(filename)); fe != "" && fe != e {
			return "", "", false
		}
		return declared, e, true
	}
	return "", "", false
}

var thumbnailExtByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func resolveThumbnailType(content []byte) (contentType, ext string, ok bool) {
	detected := normalizeMediaType(http.DetectContentType(content))
	if e, known := thumbnailExtByType[detected]; known {
		return detected, e, true
	}
	return "", "", false
}

func normalizeMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func (s *UploadService) workerLoop(ctx context.Context) {
	const staleDuration = 15 * time.Minute
	const idleSleep = 750 * time.Millisecond

	_, _ = s.videoRepo.RequeueStaleProcessing(ctx, staleDuration)
	lastRequeue := time.Now().UTC()

	for {
		if ctx.Err() != nil {
			return
		}
		if time.Since(lastRequeue) >= time.Minute {
			_, _ = s.videoRepo.RequeueStaleProcessing(ctx, staleDuration)
			lastRequeue = time.Now().UTC()
		}

		video, err := s.videoRepo.ClaimNextQueued(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if !sleepContext(ctx, idleSleep) {
					return
				}
				continue
			}
			if !sleepContext(ctx, time.Second) {
				return
			}
			continue
		}

		if err := s.processQueuedVideo(ctx, video); err != nil {
			if ferr := s.videoRepo.MarkFailed(ctx, video.ID); ferr != nil {
				log.Printf("ERROR: failed to mark video %d as failed: %v (original error: %v)", video.ID, ferr, err)
			}
		}
	}
}

// processQueuedVideo verifies the uploaded object actually landed in storage
// before the video is published to the catalog.
func (s *UploadService) processQueuedVideo(ctx context.Context, video *models.Video) error {
	start := time.Now()

	if video.ObjectKey == "" {
		// Catalog entries referencing external URLs have nothing to verify.
		return s.videoRepo.MarkReady(ctx, video.ID)
	}
	if s.store == nil {
		return errors.New("object store not configured")
	}

	info, err := s.store.Stat(ctx, video.ObjectKey)
	if err != nil {
		return err
	}
	if info.Size == 0 {
		return fmt.Errorf("object %s is empty", video.ObjectKey)
	}

	if err := s.videoRepo.MarkReady(ctx, video.ID); err != nil {
		return err
	}
	observability.VideoProcessingDuration.Observe(time.Since(start).Seconds())
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
