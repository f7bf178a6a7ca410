package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags reports the configured flag set alongside its evaluation for
// the requesting admin, so percentage rollouts can be inspected per user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	raw := map[string]string{}
	evaluated := map[string]bool{}
	if s.featureFlags != nil {
		raw = s.featureFlags.Raw()
		evaluated = s.featureFlags.Snapshot(userID)
	}

	return c.JSON(fiber.Map{
		"raw":       raw,
		"evaluated": evaluated,
	})
}
