package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	VideoKeyPrefix     = "video:%d"
	VideoListKeyPrefix = "videos:first:%s"
	UserVideosPrefix   = "user:%d:videos"
)

const (
	UserTTL       = 5 * time.Minute
	VideoTTL      = 30 * time.Minute
	VideoListTTL  = 1 * time.Minute
	UserVideosTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func VideoKey(videoID uint) string {
	return fmt.Sprintf(VideoKeyPrefix, videoID)
}

// VideoListKey caches only the first page of a category listing. Paginated
// and searched results always hit the database.
func VideoListKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf(VideoListKeyPrefix, category)
}

func UserVideosKey(userID uint) string {
	return fmt.Sprintf(UserVideosPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateVideo(ctx context.Context, videoID uint) {
	Invalidate(ctx, VideoKey(videoID))
}

// InvalidateVideoLists drops the cached first pages for the given category
// and the unfiltered listing.
func InvalidateVideoLists(ctx context.Context, category string) {
	Invalidate(ctx, VideoListKey(""))
	if category != "" {
		Invalidate(ctx, VideoListKey(category))
	}
}

func InvalidateUserVideos(ctx context.Context, userID uint) {
	Invalidate(ctx, UserVideosKey(userID))
}
