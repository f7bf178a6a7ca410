package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ummahtube/internal/featureflags"
	"ummahtube/internal/models"
	"ummahtube/internal/observability"
	"ummahtube/internal/repository"
)

// FlagNotifications gates the engagement notification pipeline.
const FlagNotifications = "notifications"

// NotificationPublisher pushes a notification payload toward connected
// websocket clients.
type NotificationPublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

type NotificationService struct {
	repo      repository.NotificationRepository
	userRepo  repository.UserRepository
	publisher NotificationPublisher
	flags     *featureflags.Manager
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	publisher NotificationPublisher,
	flags *featureflags.Manager,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		userRepo:  userRepo,
		publisher: publisher,
		flags:     flags,
	}
}

// notificationPayload is the wire shape pushed over the websocket channel.
type notificationPayload struct {
	ID            uint   `json:"id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	VideoID       uint   `json:"video_id"`
	ActorID       uint   `json:"actor_id"`
	ActorUsername string `json:"actor_username"`
	CreatedAt     string `json:"created_at"`
}

// NotifyLike records and publishes a like notification to the video owner.
// Self-likes produce no notification.
func (s *NotificationService) NotifyLike(ctx context.Context, actorID uint, video *models.Video) {
	s.notify(ctx, actorID, video, models.NotificationTypeLike, "%s liked your video %q")
}

// NotifyComment records and publishes a comment notification to the video
// owner. Self-comments produce no notification.
func (s *NotificationService) NotifyComment(ctx context.Context, actorID uint, video *models.Video) {
	s.notify(ctx, actorID, video, models.NotificationTypeComment, "%s commented on your video %q")
}

func (s *NotificationService) notify(
	ctx context.Context,
	actorID uint,
	video *models.Video,
	kind models.NotificationType,
	messageFormat string,
) {
	if video == nil || actorID == 0 || actorID == video.UserID {
		return
	}
	if s.flags != nil && !s.flags.Enabled(FlagNotifications, video.UserID) {
		return
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		log.Printf("WARN: skipping %s notification, actor %d lookup failed: %v", kind, actorID, err)
		return
	}

	notification := &models.Notification{
		UserID:  video.UserID,
		ActorID: actorID,
		VideoID: video.ID,
		Type:    kind,
		Message: fmt.Sprintf(messageFormat, actor.Username, video.Title),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("WARN: failed to persist %s notification for user %d: %v", kind, video.UserID, err)
		return
	}

	observability.NotificationsPublished.WithLabelValues(string(kind)).Inc()

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(notificationPayload{
		ID:            notification.ID,
		Type:          string(kind),
		Message:       notification.Message,
		VideoID:       video.ID,
		ActorID:       actorID,
		ActorUsername: actor.Username,
		CreatedAt:     notification.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		log.Printf("WARN: failed to marshal %s notification payload: %v", kind, err)
		return
	}
	if err := s.publisher.PublishUser(ctx, video.UserID, string(payload)); err != nil {
		log.Printf("WARN: failed to publish %s notification to user %d: %v", kind, video.UserID, err)
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}
