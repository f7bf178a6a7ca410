// Package service contains the application business logic.
package service

import (
	"context"
	"errors"
	"strings"

	"ummahtube/internal/cache"
	"ummahtube/internal/models"
	"ummahtube/internal/repository"

	"gorm.io/gorm"
)

// LikeNotifier delivers a like notification to a video's owner. Delivery is
// best-effort; failures never surface to the liking user.
type LikeNotifier interface {
	NotifyLike(ctx context.Context, actorID uint, video *models.Video)
}

type VideoService struct {
	videoRepo repository.VideoRepository
	notifier  LikeNotifier
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

type CreateVideoInput struct {
	UserID          uint
	Title           string
	Description     string
	Category        string
	VideoURL        string
	ThumbnailURL    string
	DurationSeconds int
}

type ListVideosInput struct {
	Category      string
	Limit         int
	Offset        int
	CurrentUserID uint
}

type UpdateVideoInput struct {
	UserID       uint
	VideoID      uint
	Title        string
	Description  string
	Category     string
	ThumbnailURL string
}

type DeleteVideoInput struct {
	UserID  uint
	VideoID uint
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	notifier LikeNotifier,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		notifier:  notifier,
		isAdmin:   isAdmin,
	}
}

const (
	maxVideoTitleLen       = 200
	maxVideoDescriptionLen = 5000
	maxVideoCategoryLen    = 50
)

// validateCategory requires a non-empty label of sane length. The category
// set is open; creators may introduce new labels beyond the well-known ones.
func validateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.NewValidationError("Category is required")
	}
	if len(category) > maxVideoCategoryLen {
		return models.NewValidationError("Category too long (max 50 characters)")
	}
	return nil
}

// NormalizeCategory maps a case-insensitive category name onto its canonical
// form, or returns the input unchanged when it is not a well-known category.
func NormalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case strings.ToLower(models.CategoryQuran):
		return models.CategoryQuran
	case strings.ToLower(models.CategoryHadith):
		return models.CategoryHadith
	case strings.ToLower(models.CategoryDaawah):
		return models.CategoryDaawah
	default:
		return strings.TrimSpace(category)
	}
}

func (s *VideoService) CreateVideo(ctx context.Context, in CreateVideoInput) (*models.Video, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxVideoTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if len(in.Description) > maxVideoDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 5000 characters)")
	}
	if err := validateCategory(in.Category); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		return nil, models.NewValidationError("video_url is required")
	}
	if in.DurationSeconds < 0 {
		return nil, models.NewValidationError("duration_seconds cannot be negative")
	}

	video := &models.Video{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		Category:        NormalizeCategory(in.Category),
		VideoURL:        in.VideoURL,
		ThumbnailURL:    in.ThumbnailURL,
		DurationSeconds: in.DurationSeconds,
		Status:          models.VideoStatusReady,
		UserID:          in.UserID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetVideo(ctx, video.ID, in.UserID)
}

func (s *VideoService) ListVideos(ctx context.Context, in ListVideosInput) ([]*models.Video, error) {
	// The filter is lenient: an unknown category simply yields an empty page.
	category := NormalizeCategory(in.Category)

	var videos []*models.Video
	var err error

	if in.Offset == 0 && in.Limit <= 20 {
		key := cache.VideoListKey(category)
		err = cache.Aside(ctx, key, &videos, cache.VideoListTTL, func() error {
			var fetchErr error
			videos, fetchErr = s.videoRepo.List(ctx, category, in.Limit, in.Offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if err := s.enrichLiked(ctx, videos, in.CurrentUserID); err != nil {
			return nil, err
		}
		return videos, nil
	}

	videos, err = s.videoRepo.List(ctx, category, in.Limit, in.Offset, in.CurrentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}

func (s *VideoService) SearchVideos(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	videos, err := s.videoRepo.Search(ctx, strings.TrimSpace(query), limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}

func (s *VideoService) GetVideo(ctx context.Context, id uint, currentUserID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Video", id)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return video, nil
}

func (s *VideoService) GetUserVideos(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	if userID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}

	var videos []*models.Video
	var err error

	// The cached first page is the visitor view (ready videos only), so the
	// owner bypasses it to see their own pending uploads.
	if offset == 0 && limit <= 20 && currentUserID != userID {
		key := cache.UserVideosKey(userID)
		err = cache.Aside(ctx, key, &videos, cache.UserVideosTTL, func() error {
			var fetchErr error
			videos, fetchErr = s.videoRepo.GetByUserID(ctx, userID, limit, offset, 0)
			return fetchErr
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if err := s.enrichLiked(ctx, videos, currentUserID); err != nil {
			return nil, err
		}
		return videos, nil
	}

	videos, err = s.videoRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return videos, nil
}

// enrichLiked recomputes the liked flag for a cached page, which is always
// fetched as the anonymous view.
func (s *VideoService) enrichLiked(ctx context.Context, videos []*models.Video, currentUserID uint) error {
	if currentUserID == 0 || len(videos) == 0 {
		return nil
	}
	videoIDs := make([]uint, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
	}
	likedIDs, err := s.videoRepo.GetLikedVideoIDs(ctx, currentUserID, videoIDs)
	if err != nil {
		// Liked status is cosmetic on listings; serve the page anyway.
		return nil
	}
	likedMap := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedMap[id] = true
	}
	for _, v := range videos {
		v.Liked = likedMap[v.ID]
	}
	return nil
}

func (s *VideoService) RecordView(ctx context.Context, id uint) error {
	if _, err := s.GetVideo(ctx, id, 0); err != nil {
		return err
	}
	if err := s.videoRepo.IncrementViews(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the caller's like on a video and returns the refreshed
// video. A transition to liked notifies the owner.
func (s *VideoService) ToggleLike(ctx context.Context, userID, videoID uint) (*models.Video, error) {
	video, err := s.GetVideo(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}

	isLiked, err := s.videoRepo.IsLiked(ctx, userID, videoID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if isLiked {
		if err := s.videoRepo.Unlike(ctx, userID, videoID); err != nil {
			return nil, models.NewInternalError(err)
		}
	} else {
		if err := s.videoRepo.Like(ctx, userID, videoID); err != nil {
			return nil, models.NewInternalError(err)
		}
		if s.notifier != nil {
			s.notifier.NotifyLike(ctx, userID, video)
		}
	}

	return s.GetVideo(ctx, videoID, userID)
}

func (s *VideoService) UpdateVideo(ctx context.Context, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.GetVideo(ctx, in.VideoID, in.UserID)
	if err != nil {
		return nil, err
	}

	if video.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own videos")
	}

	if in.Title != "" {
		if len(in.Title) > maxVideoTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		video.Title = strings.TrimSpace(in.Title)
	}
	if in.Description != "" {
		if len(in.Description) > maxVideoDescriptionLen {
			return nil, models.NewValidationError("Description too long (max 5000 characters)")
		}
		video.Description = in.Description
	}
	if in.Category != "" {
		if err := validateCategory(in.Category); err != nil {
			return nil, err
		}
		video.Category = NormalizeCategory(in.Category)
	}
	if in.ThumbnailURL != "" {
		video.ThumbnailURL = in.ThumbnailURL
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, models.NewInternalError(err)
	}
	return video, nil
}

func (s *VideoService) DeleteVideo(ctx context.Context, in DeleteVideoInput) error {
	video, err := s.GetVideo(ctx, in.VideoID, in.UserID)
	if err != nil {
		return err
	}

	if video.UserID != in.UserID {
		if s.isAdmin == nil {
			return models.NewForbiddenError("You can only delete your own videos")
		}
		admin, err := s.isAdmin(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own videos")
		}
	}

	if err := s.videoRepo.Delete(ctx, in.VideoID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
