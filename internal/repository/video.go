// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"ummahtube/internal/cache"
	"ummahtube/internal/models"

	"gorm.io/gorm"
)

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Video, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Video, error)
	List(ctx context.Context, category string, limit, offset int, currentUserID uint) ([]*models.Video, error)
	Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, videoID uint) (bool, error)
	GetLikedVideoIDs(ctx context.Context, userID uint, videoIDs []uint) ([]uint, error)
	Like(ctx context.Context, userID, videoID uint) error
	Unlike(ctx context.Context, userID, videoID uint) error
	ClaimNextQueued(ctx context.Context) (*models.Video, error)
	MarkReady(ctx context.Context, videoID uint) error
	MarkFailed(ctx context.Context, videoID uint) error
	RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error)
}

// videoRepository implements VideoRepository
type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	err := r.db.WithContext(ctx).Create(video).Error
	if err == nil {
		cache.InvalidateVideoLists(ctx, video.Category)
		cache.InvalidateUserVideos(ctx, video.UserID)
	}
	return err
}

func (r *videoRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Video, error) {
	var video models.Video

	var err error
	if currentUserID == 0 {
		// Anonymous detail views are cacheable; liked is always false for them.
		key := cache.VideoKey(id)
		err = cache.Aside(ctx, key, &video, cache.VideoTTL, func() error {
			return r.applyVideoDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&video, id).Error
		})
	} else {
		err = r.applyVideoDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&video, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByUserID lists a creator's videos. Visitors only see published videos;
// the owner also sees their own queued, processing, and failed uploads.
func (r *videoRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	var videos []*models.Video
	base := r.applyVideoDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID)
	if currentUserID != userID {
		base = base.Where("status = ?", models.VideoStatusReady)
	}
	err := base.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	return videos, err
}

// List returns the public catalog page. Only ready videos are published;
// queued and processing uploads stay invisible until the worker promotes them.
func (r *videoRepository) List(ctx context.Context, category string, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	var videos []*models.Video
	base := r.applyVideoDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("status = ?", models.VideoStatusReady)
	if category != "" {
		base = base.Where("category = ?", category)
	}
	err := base.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	return videos, err
}

func (r *videoRepository) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	var videos []*models.Video
	like := "%" + query + "%"
	err := r.applyVideoDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("status = ?", models.VideoStatusReady).
		Where("title ILIKE ?", like).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	return videos, err
}

// applyVideoDetails adds subqueries to fetch counts and liked status in a single query.
func (r *videoRepository) applyVideoDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "videos.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.video_id = videos.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.video_id = videos.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.video_id = videos.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}

func (r *videoRepository) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.VideoKey(video.ID))
	cache.InvalidateVideoLists(ctx, video.Category)
	return nil
}

func (r *videoRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Video{}, id).Error; err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.VideoKey(id))
	cache.InvalidateVideoLists(ctx, "")
	return nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
	if err == nil {
		cache.Invalidate(ctx, cache.VideoKey(id))
	}
	return err
}

func (r *videoRepository) IsLiked(ctx context.Context, userID, videoID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *videoRepository) GetLikedVideoIDs(ctx context.Context, userID uint, videoIDs []uint) ([]uint, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	var likedVideoIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND video_id IN ?", userID, videoIDs).
		Pluck("video_id", &likedVideoIDs).Error
	return likedVideoIDs, err
}

func (r *videoRepository) Like(ctx context.Context, userID, videoID uint) error {
	// Use INSERT ... ON CONFLICT DO NOTHING to handle race conditions
	// This is atomic and prevents duplicate key errors
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, video_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, video_id) DO NOTHING`,
		userID, videoID,
	)
	if result.Error == nil {
		r.invalidateEngagementCaches(ctx, videoID)
	}
	return result.Error
}

func (r *videoRepository) Unlike(ctx context.Context, userID, videoID uint) error {
	err := r.db.WithContext(ctx).Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&models.Like{}).Error
	if err == nil {
		r.invalidateEngagementCaches(ctx, videoID)
	}
	return err
}

// invalidateEngagementCaches drops every cached view whose counts include the
// video: the detail entry, the first-page listings, and the owner's videos
// page. The owner/category lookup only runs when a cache is connected.
func (r *videoRepository) invalidateEngagementCaches(ctx context.Context, videoID uint) {
	if cache.GetClient() == nil {
		return
	}
	cache.Invalidate(ctx, cache.VideoKey(videoID))

	var owner struct {
		UserID   uint
		Category string
	}
	if err := r.db.WithContext(ctx).Model(&models.Video{}).
		Select("user_id", "category").
		Where("id = ?", videoID).
		Take(&owner).Error; err != nil {
		cache.InvalidateVideoLists(ctx, "")
		return
	}
	cache.InvalidateVideoLists(ctx, owner.Category)
	cache.InvalidateUserVideos(ctx, owner.UserID)
}

func (r *videoRepository) ClaimNextQueued(ctx context.Context) (*models.Video, error) {
	if r.db.Name() == "postgres" {
		var claimed models.Video
		err := r.db.WithContext(ctx).Raw(`
WITH picked AS (
	SELECT id
	FROM videos
	WHERE status = ?
	ORDER BY id
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
UPDATE videos v
SET status = ?,
    updated_at = NOW()
FROM picked
WHERE v.id = picked.id
RETURNING v.*
`, models.VideoStatusQueued, models.VideoStatusProcessing).Scan(&claimed).Error
		if err != nil {
			return nil, err
		}
		if claimed.ID == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return &claimed, nil
	}

	// SQLite/test fallback (best-effort atomicity).
	var claimed models.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", models.VideoStatusQueued).Order("id ASC").First(&claimed).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Video{}).
			Where("id = ? AND status = ?", claimed.ID, models.VideoStatusQueued).
			Update("status", models.VideoStatusProcessing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&claimed, claimed.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

func (r *videoRepository) MarkReady(ctx context.Context, videoID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", videoID).
		Update("status", models.VideoStatusReady).Error
	if err == nil {
		// Publication changes what the listings contain.
		r.invalidateEngagementCaches(ctx, videoID)
	}
	return err
}

func (r *videoRepository) MarkFailed(ctx context.Context, videoID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", videoID).
		Update("status", models.VideoStatusFailed).Error
	if err == nil {
		cache.Invalidate(ctx, cache.VideoKey(videoID))
	}
	return err
}

func (r *videoRepository) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("status = ? AND updated_at < ?", models.VideoStatusProcessing, cutoff).
		Update("status", models.VideoStatusQueued)
	return res.RowsAffected, res.Error
}
