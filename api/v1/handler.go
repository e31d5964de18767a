// Package v1 implements the public ingestion API consumed by the tracking
// snippet: session starts and conversion events.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"attrify/internal/events"
	"attrify/internal/pkg/metrics"
	"attrify/internal/websites"
)

const (
	msgSessionAdded    = "Session recorded successfully"
	msgConversionAdded = "Conversion recorded successfully"
	errInvalidRequest  = "Invalid request"
	errInvalidOrigin   = "Invalid origin"
)

// CreateSessionParams is the session-start payload.
type CreateSessionParams struct {
	SessionID   string    `json:"sessionId"`
	UTMSource   string    `json:"utmSource"`
	UTMMedium   string    `json:"utmMedium"`
	UTMCampaign string    `json:"utmCampaign"`
	Timestamp   time.Time `json:"timestamp"`
}

// CreateConversionParams is the conversion payload.
type CreateConversionParams struct {
	SessionID string    `json:"sessionId"`
	Name      string    `json:"name"`
	Revenue   float64   `json:"revenue"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateSessionPublicAPIHandler records a visit session for the website
// matching the request origin.
func CreateSessionPublicAPIHandler(ctx *cartridge.Context) error {
	ctx.Logger.Info("Received session request", slog.String("method", ctx.Method()), slog.String("path", ctx.Path()))

	var params CreateSessionParams
	if err := ctx.Ctx.BodyParser(&params); err != nil {
		return handleError(ctx.Ctx, fiber.NewError(http.StatusBadRequest, errInvalidRequest))
	}

	websiteID, err := resolveWebsiteFromOrigin(ctx)
	if err != nil {
		ctx.Logger.Debug("Failed to validate request origin", slog.Any("error", err))
		return handleError(ctx.Ctx, err)
	}

	input := &events.CollectSessionInput{
		WebsiteID:    websiteID,
		SessionID:    params.SessionID,
		UTMSource:    params.UTMSource,
		UTMMedium:    params.UTMMedium,
		UTMCampaign:  params.UTMCampaign,
		FirstEventAt: params.Timestamp,
	}

	session, err := events.CollectSession(ctx.DBManager, ctx.Logger, input)
	if err != nil {
		ctx.Logger.Error("Failed to collect session", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to collect session",
			"code":  "COLLECTION_ERROR",
		})
	}

	metrics.SessionsIngested.Inc()
	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"message":   msgSessionAdded,
		"sessionId": session.SessionID,
		"status":    http.StatusAccepted,
	})
}

// CreateConversionPublicAPIHandler records a conversion event for the
// website matching the request origin.
func CreateConversionPublicAPIHandler(ctx *cartridge.Context) error {
	ctx.Logger.Info("Received conversion request", slog.String("method", ctx.Method()), slog.String("path", ctx.Path()))

	var params CreateConversionParams
	if err := ctx.Ctx.BodyParser(&params); err != nil {
		return handleError(ctx.Ctx, fiber.NewError(http.StatusBadRequest, errInvalidRequest))
	}

	websiteID, err := resolveWebsiteFromOrigin(ctx)
	if err != nil {
		ctx.Logger.Debug("Failed to validate request origin", slog.Any("error", err))
		return handleError(ctx.Ctx, err)
	}

	input := &events.CollectConversionInput{
		WebsiteID: websiteID,
		SessionID: params.SessionID,
		Name:      params.Name,
		Revenue:   params.Revenue,
		Timestamp: params.Timestamp,
	}

	if _, err := events.CollectConversion(ctx.DBManager, ctx.Logger, input); err != nil {
		ctx.Logger.Error("Failed to collect conversion", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to collect conversion",
			"code":  "COLLECTION_ERROR",
		})
	}

	metrics.ConversionsIngested.Inc()
	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"message": msgConversionAdded,
		"status":  http.StatusAccepted,
	})
}

// resolveWebsiteFromOrigin maps the Origin (or Referer) header to a
// registered website. The Origin header is set by the browser and cannot be
// spoofed by JavaScript.
func resolveWebsiteFromOrigin(ctx *cartridge.Context) (uint, error) {
	origin := ctx.Get("Origin")
	if origin == "" {
		origin = ctx.Get("Referer")
	}
	if origin == "" {
		return 0, fiber.NewError(http.StatusForbidden, errInvalidOrigin)
	}

	parsedURL, err := url.Parse(origin)
	if err != nil || parsedURL.Hostname() == "" {
		return 0, fiber.NewError(http.StatusForbidden, errInvalidOrigin)
	}

	domain := websites.BaseDomainForHost(parsedURL.Hostname())
	websiteID, err := websites.GetWebsiteOrNotFound(ctx.DB(), domain)
	if err != nil {
		var notFound *websites.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return 0, fiber.NewError(http.StatusBadRequest, "Website not found - please register your domain first")
		}
		return 0, err
	}

	return websiteID, nil
}

func handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
