package middleware

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"attrify/internal/websites"
)

// ReportAPIKeyAuth validates the API key for report endpoints against the
// requested website's stored key.
// Expects: Authorization: Bearer <api_key>
func ReportAPIKeyAuth(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		// Extract Bearer token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Authorization header format. Expected: Bearer <api_key>",
			})
		}

		providedKey := strings.TrimPrefix(authHeader, "Bearer ")
		if providedKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is empty",
			})
		}

		websiteID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid website ID",
			})
		}

		website, err := websites.GetWebsiteByID(db, uint(websiteID))
		if err != nil {
			var notFound *websites.WebsiteNotFoundError
			if errors.As(err, &notFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Website not found",
				})
			}
			logger.Error("Failed to load website for API key check", slog.Any("error", err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to validate API key",
			})
		}

		if website.APIKey == "" {
			logger.Warn("Website has no API key configured", slog.Int("websiteId", websiteID))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key not configured for this website",
			})
		}

		// Constant-time comparison to prevent timing attacks
		if !secureCompare(providedKey, website.APIKey) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		return c.Next()
	}
}

// secureCompare performs constant-time string comparison
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
