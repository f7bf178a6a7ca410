// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"io"
	"mime/multipart"
	"strconv"

	"ummahtube/internal/models"
	"ummahtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadVideo handles POST /api/videos/upload
// @Summary Upload a video file
// @Description Accepts a multipart form with the video file, optional thumbnail and metadata.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file"
// @Param thumbnail formData file false "Thumbnail image"
// @Param title formData string true "Video title"
// @Param description formData string false "Video description"
// @Param category formData string true "Video category"
// @Success 201 {object} models.Video
// @Failure 400 {object} object{error=string}
// @Failure 503 {object} object{error=string}
// @Router /videos/upload [post]
func (s *Server) UploadVideo(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	if s.uploadService == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("Uploads are temporarily unavailable"))
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No video file uploaded"))
	}

	content, err := readFormFile(fileHeader)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	input := service.UploadVideoInput{
		UserID:          userID,
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
		Category:        c.FormValue("category"),
		DurationSeconds: durationFromForm(c),
		Filename:        fileHeader.Filename,
		ContentType:     fileHeader.Header.Get("Content-Type"),
		Content:         content,
	}

	// Thumbnail is optional; a missing form field is not an error.
	if thumbHeader, thumbErr := c.FormFile("thumbnail"); thumbErr == nil {
		thumb, readErr := readFormFile(thumbHeader)
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unable to read uploaded thumbnail"))
		}
		input.ThumbnailFilename = thumbHeader.Filename
		input.ThumbnailContentType = thumbHeader.Header.Get("Content-Type")
		input.Thumbnail = thumb
	}

	video, err := s.uploadService.Upload(ctx, input)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(video)
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return io.ReadAll(src)
}

// durationFromForm parses the optional duration_seconds form field.
// A missing or malformed value is treated as unknown (zero).
func durationFromForm(c *fiber.Ctx) int {
	raw := c.FormValue("duration_seconds")
	if raw == "" {
		return 0
	}
	d, err := strconv.Atoi(raw)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
