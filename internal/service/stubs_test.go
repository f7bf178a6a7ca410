package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"ummahtube/internal/models"
	"ummahtube/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// videoRepoStub is a stub for repository.VideoRepository.
type videoRepoStub struct {
	createFn                 func(context.Context, *models.Video) error
	getByIDFn                func(context.Context, uint, uint) (*models.Video, error)
	getByUserIDFn            func(context.Context, uint, int, int, uint) ([]*models.Video, error)
	listFn                   func(context.Context, string, int, int, uint) ([]*models.Video, error)
	searchFn                 func(context.Context, string, int, int, uint) ([]*models.Video, error)
	updateFn                 func(context.Context, *models.Video) error
	deleteFn                 func(context.Context, uint) error
	incrementViewsFn         func(context.Context, uint) error
	isLikedFn                func(context.Context, uint, uint) (bool, error)
	getLikedVideoIDsFn       func(context.Context, uint, []uint) ([]uint, error)
	likeFn                   func(context.Context, uint, uint) error
	unlikeFn                 func(context.Context, uint, uint) error
	claimNextQueuedFn        func(context.Context) (*models.Video, error)
	markReadyFn              func(context.Context, uint) error
	markFailedFn             func(context.Context, uint) error
	requeueStaleProcessingFn func(context.Context, time.Duration) (int64, error)
}

func (s *videoRepoStub) Create(ctx context.Context, v *models.Video) error {
	return s.createFn(ctx, v)
}
func (s *videoRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Video, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *videoRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *videoRepoStub) List(ctx context.Context, category string, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	return s.listFn(ctx, category, limit, offset, currentUserID)
}
func (s *videoRepoStub) Search(ctx context.Context, query string, limit, offset int, currentUserID uint) ([]*models.Video, error) {
	return s.searchFn(ctx, query, limit, offset, currentUserID)
}
func (s *videoRepoStub) Update(ctx context.Context, v *models.Video) error {
	return s.updateFn(ctx, v)
}
func (s *videoRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *videoRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *videoRepoStub) IsLiked(ctx context.Context, userID, videoID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, videoID)
}
func (s *videoRepoStub) GetLikedVideoIDs(ctx context.Context, userID uint, videoIDs []uint) ([]uint, error) {
	return s.getLikedVideoIDsFn(ctx, userID, videoIDs)
}
func (s *videoRepoStub) Like(ctx context.Context, userID, videoID uint) error {
	return s.likeFn(ctx, userID, videoID)
}
func (s *videoRepoStub) Unlike(ctx context.Context, userID, videoID uint) error {
	return s.unlikeFn(ctx, userID, videoID)
}
func (s *videoRepoStub) ClaimNextQueued(ctx context.Context) (*models.Video, error) {
	return s.claimNextQueuedFn(ctx)
}
func (s *videoRepoStub) MarkReady(ctx context.Context, videoID uint) error {
	return s.markReadyFn(ctx, videoID)
}
func (s *videoRepoStub) MarkFailed(ctx context.Context, videoID uint) error {
	return s.markFailedFn(ctx, videoID)
}
func (s *videoRepoStub) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.requeueStaleProcessingFn(ctx, olderThan)
}

func noopVideoRepo() *videoRepoStub {
	return &videoRepoStub{
		createFn: func(_ context.Context, _ *models.Video) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Video, error) {
			return &models.Video{ID: id}, nil
		},
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Video, error) {
			return nil, nil
		},
		listFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Video, error) {
			return nil, nil
		},
		searchFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Video, error) {
			return nil, nil
		},
		updateFn:         func(_ context.Context, _ *models.Video) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		incrementViewsFn: func(_ context.Context, _ uint) error { return nil },
		isLikedFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		getLikedVideoIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) {
			return nil, nil
		},
		likeFn:   func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn: func(_ context.Context, _, _ uint) error { return nil },
		claimNextQueuedFn: func(_ context.Context) (*models.Video, error) {
			return nil, errors.New("no queued videos")
		},
		markReadyFn:  func(_ context.Context, _ uint) error { return nil },
		markFailedFn: func(_ context.Context, _ uint) error { return nil },
		requeueStaleProcessingFn: func(_ context.Context, _ time.Duration) (int64, error) {
			return 0, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByVideoFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn      func(context.Context, *models.Comment) error
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByVideo(ctx context.Context, videoID uint) ([]*models.Comment, error) {
	return s.listByVideoFn(ctx, videoID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByVideoFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getProfileFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	setAdminFn      func(context.Context, uint, bool) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return s.setAdminFn(ctx, id, isAdmin)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone"}, nil
		},
		getProfileFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		setAdminFn:      func(_ context.Context, _ uint, _ bool) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn         func(context.Context, uint, uint) error
	unfollowFn       func(context.Context, uint, uint) error
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	getFollowersFn   func(context.Context, uint, int, int) ([]models.User, error)
	getFollowingFn   func(context.Context, uint, int, int) ([]models.User, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) GetFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.getFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) GetFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.getFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:         func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:       func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		getFollowersFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		getFollowingFn:   func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	getByIDFn     func(context.Context, uint) (*models.Notification, error)
	listByUserFn  func(context.Context, uint, int, int) ([]*models.Notification, error)
	countUnreadFn func(context.Context, uint) (int64, error)
	markReadFn    func(context.Context, uint, uint) error
	markAllReadFn func(context.Context, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *notificationRepoStub) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.countUnreadFn(ctx, userID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, userID uint) error {
	return s.markReadFn(ctx, id, userID)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID uint) error {
	return s.markAllReadFn(ctx, userID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:  func(_ context.Context, _ *models.Notification) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Notification, error) { return &models.Notification{ID: id}, nil },
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		countUnreadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:    func(_ context.Context, _, _ uint) error { return nil },
		markAllReadFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// objectStoreStub is a stub for storage.ObjectStore.
type objectStoreStub struct {
	ensureBucketFn func(context.Context) error
	putFn          func(context.Context, string, io.Reader, int64, string) (string, error)
	statFn         func(context.Context, string) (*storage.ObjectInfo, error)
	removeFn       func(context.Context, string) error
}

func (s *objectStoreStub) EnsureBucket(ctx context.Context) error {
	return s.ensureBucketFn(ctx)
}
func (s *objectStoreStub) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return s.putFn(ctx, key, r, size, contentType)
}
func (s *objectStoreStub) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	return s.statFn(ctx, key)
}
func (s *objectStoreStub) Remove(ctx context.Context, key string) error {
	return s.removeFn(ctx, key)
}

func noopObjectStore() *objectStoreStub {
	return &objectStoreStub{
		ensureBucketFn: func(_ context.Context) error { return nil },
		putFn: func(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
			return "http://localhost:9000/ummahtube-media/" + key, nil
		},
		statFn: func(_ context.Context, key string) (*storage.ObjectInfo, error) {
			return &storage.ObjectInfo{Key: key, Size: 1024}, nil
		},
		removeFn: func(_ context.Context, _ string) error { return nil },
	}
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "NOT_FOUND")
}
