package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"attrify/internal/attribution"
	"attrify/internal/events"
	"attrify/internal/pkg/async"
	"attrify/internal/pkg/metrics"
	"attrify/internal/timeframe"
	websitesCtx "attrify/internal/websites"
)

// AttributionResponse is the JSON shape of the report endpoint.
type AttributionResponse struct {
	Success   bool                       `json:"success"`
	Model     attribution.Model          `json:"model"`
	DateRange attribution.DateRange      `json:"dateRange"`
	Overall   attribution.Totals         `json:"overall"`
	Channels  []attribution.ChannelStats `json:"channels"`
}

// ComparisonResponse is the JSON shape of the model-comparison endpoint,
// one report per supported model over the same dataset.
type ComparisonResponse struct {
	Success   bool                                       `json:"success"`
	DateRange attribution.DateRange                      `json:"dateRange"`
	Reports   map[attribution.Model]*attribution.Report `json:"reports"`
}

// AttributionReportAction serves GET /api/v1/websites/:id/attribution.
func AttributionReportAction(ctx *cartridge.Context) error {
	websiteID, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid website ID",
			"code":  "INVALID_WEBSITE_ID",
		})
	}

	model, err := attribution.ParseModel(ctx.Query("model"))
	if err != nil {
		ctx.Logger.Debug("Rejected attribution request", slog.Any("error", err))
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_MODEL",
		})
	}

	db := ctx.DB()
	if _, err := websitesCtx.GetWebsiteByID(db, uint(websiteID)); err != nil {
		var notFound *websitesCtx.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Website not found",
				"code":  "WEBSITE_NOT_FOUND",
			})
		}
		ctx.Logger.Error("Failed to load website", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load website",
			"code":  "INTERNAL_ERROR",
		})
	}

	clock := &timeframe.DefaultTimeProvider{}
	tf, err := timeframe.NewParser(clock).Parse(timeframe.ParserParams{
		StartDate: ctx.Query("startDate"),
		EndDate:   ctx.Query("endDate"),
	})
	if err != nil {
		ctx.Logger.Debug("Rejected attribution request", slog.Any("error", err))
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_DATE_RANGE",
		})
	}

	metrics.ReportRequests.WithLabelValues(string(model)).Inc()
	timer := prometheus.NewTimer(metrics.ReportDuration)
	defer timer.ObserveDuration()

	sessions, conversions, err := fetchStoreData(db, uint(websiteID), tf, ctx.Logger)
	if err != nil {
		ctx.Logger.Error("Error fetching attribution data", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching attribution data",
			"code":  "INTERNAL_ERROR",
		})
	}

	paths := attribution.BuildPaths(sessions, conversions)
	report, err := attribution.BuildReport(sessions, paths, model, tf, clock.Now())
	if err != nil {
		ctx.Logger.Error("Error building attribution report", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error building attribution report",
			"code":  "INTERNAL_ERROR",
		})
	}

	ctx.Logger.Info("Attribution report served",
		slog.Int("websiteId", websiteID),
		slog.String("model", string(model)),
		slog.Int64("sessions", report.Overall.TotalSessions),
		slog.Int64("conversions", report.Overall.TotalConversions))

	return ctx.JSON(AttributionResponse{
		Success:   true,
		Model:     report.Model,
		DateRange: report.DateRange,
		Overall:   report.Overall,
		Channels:  report.Channels,
	})
}

// AttributionCompareAction serves GET /api/v1/websites/:id/attribution/compare.
// It fetches the dataset once and builds one report per model concurrently.
func AttributionCompareAction(ctx *cartridge.Context) error {
	websiteID, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid website ID",
			"code":  "INVALID_WEBSITE_ID",
		})
	}

	db := ctx.DB()
	if _, err := websitesCtx.GetWebsiteByID(db, uint(websiteID)); err != nil {
		var notFound *websitesCtx.WebsiteNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Website not found",
				"code":  "WEBSITE_NOT_FOUND",
			})
		}
		ctx.Logger.Error("Failed to load website", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load website",
			"code":  "INTERNAL_ERROR",
		})
	}

	clock := &timeframe.DefaultTimeProvider{}
	tf, err := timeframe.NewParser(clock).Parse(timeframe.ParserParams{
		StartDate: ctx.Query("startDate"),
		EndDate:   ctx.Query("endDate"),
	})
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "INVALID_DATE_RANGE",
		})
	}

	sessions, conversions, err := fetchStoreData(db, uint(websiteID), tf, ctx.Logger)
	if err != nil {
		ctx.Logger.Error("Error fetching attribution data", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching attribution data",
			"code":  "INTERNAL_ERROR",
		})
	}

	paths := attribution.BuildPaths(sessions, conversions)
	now := clock.Now()

	models := attribution.AllModels()
	tasks := make([]async.Task, 0, len(models))
	for _, model := range models {
		model := model
		metrics.ReportRequests.WithLabelValues(string(model)).Inc()
		tasks = append(tasks, async.Task{
			Name: string(model),
			Execute: func() (interface{}, error) {
				return attribution.BuildReport(sessions, paths, model, tf, now)
			},
		})
	}

	pool := async.NewPool(len(models))
	results := pool.Execute(context.Background(), tasks)

	reports := make(map[attribution.Model]*attribution.Report, len(models))
	for _, model := range models {
		result, exists := results[string(model)]
		if !exists || result.Err != nil {
			ctx.Logger.Error("Error building attribution report", slog.String("model", string(model)), slog.Any("error", result.Err))
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error building attribution report",
				"code":  "INTERNAL_ERROR",
			})
		}
		reports[model] = result.Data.(*attribution.Report)
	}

	return ctx.JSON(ComparisonResponse{
		Success:   true,
		DateRange: attribution.DateRange{Start: tf.From, End: tf.To},
		Reports:   reports,
	})
}

// fetchStoreData loads sessions and conversion events for the frame through
// the async pool so both queries run concurrently.
func fetchStoreData(db *gorm.DB, websiteID uint, tf *timeframe.TimeFrame, logger *slog.Logger) ([]events.Session, []events.ConversionEvent, error) {
	tasks := []async.Task{
		{
			Name: "sessions",
			Execute: func() (interface{}, error) {
				return events.FindSessionsInTimeFrame(db, websiteID, tf)
			},
		},
		{
			Name: "conversions",
			Execute: func() (interface{}, error) {
				return events.FindConversionEventsInTimeFrame(db, websiteID, tf)
			},
		},
	}

	pool := async.NewPool(2)
	results := pool.Execute(context.Background(), tasks)

	for _, name := range []string{"sessions", "conversions"} {
		if result, exists := results[name]; !exists || result.Err != nil {
			logger.Error("Store query failed", slog.String("query", name), slog.Any("error", result.Err))
			return nil, nil, fmt.Errorf("store query %s failed: %w", name, result.Err)
		}
	}

	sessions, _ := results["sessions"].Data.([]events.Session)
	conversions, _ := results["conversions"].Data.([]events.ConversionEvent)
	return sessions, conversions, nil
}
