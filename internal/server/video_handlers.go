// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"ummahtube/internal/models"
	"ummahtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetVideos handles GET /api/videos?category=&limit=&offset=
func (s *Server) GetVideos(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)
	userID, _ := s.optionalUserID(c)

	videos, err := s.videoService.ListVideos(ctx, service.ListVideosInput{
		Category:      c.Query("category"),
		Limit:         page.Limit,
		Offset:        page.Offset,
		CurrentUserID: userID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(videos)
}

// SearchVideos handles GET /api/videos/search?q=...
func (s *Server) SearchVideos(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")

	page := parsePagination(c, 20)
	userID, _ := s.optionalUserID(c)

	videos, err := s.videoService.SearchVideos(ctx, q, page.Limit, page.Offset, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(videos)
}

// GetVideo handles GET /api/videos/:id
func (s *Server) GetVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	video, err := s.videoService.GetVideo(ctx, id, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(video)
}

// RecordView handles POST /api/videos/:id/view
func (s *Server) RecordView(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.videoService.RecordView(ctx, id); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CreateVideo handles POST /api/videos (JSON create for pre-uploaded URLs)
func (s *Server) CreateVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		Category        string `json:"category"`
		VideoURL        string `json:"video_url"`
		ThumbnailURL    string `json:"thumbnail_url,omitempty"`
		DurationSeconds int    `json:"duration_seconds,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	video, err := s.videoService.CreateVideo(ctx, service.CreateVideoInput{
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		VideoURL:        req.VideoURL,
		ThumbnailURL:    req.ThumbnailURL,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(video)
}

// GetUserVideos handles GET /api/users/:id/videos
func (s *Server) GetUserVideos(c *fiber.Ctx) error {
	ctx := c.Context()
	userIDParam, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 20)
	currentUserID, _ := s.optionalUserID(c)

	videos, err := s.videoService.GetUserVideos(ctx, userIDParam, page.Limit, page.Offset, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(videos)
}

// UpdateVideo handles PUT /api/videos/:id
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	videoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		Category     string `json:"category"`
		ThumbnailURL string `json:"thumbnail_url,omitempty"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	video, err := s.videoService.UpdateVideo(ctx, service.UpdateVideoInput{
		UserID:       userID,
		VideoID:      videoID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(video)
}

// DeleteVideo handles DELETE /api/videos/:id
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	videoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.videoService.DeleteVideo(ctx, service.DeleteVideoInput{
		UserID:  userID,
		VideoID: videoID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikeVideo handles POST /api/videos/:id/like
// This endpoint toggles the like status - if already liked, it unlikes; if not liked, it likes
func (s *Server) LikeVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	videoID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	video, err := s.videoService.ToggleLike(ctx, userID, videoID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(video)
}
