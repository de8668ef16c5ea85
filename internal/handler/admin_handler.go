package handler

import (
	"errors"
	"net/http"

	"hd-tickets/internal/model"
	"hd-tickets/internal/scraper"
	"hd-tickets/internal/worker"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes platform toggles, scrape statistics, and the
// recurring-scrape job API.
type AdminHandler struct {
	orchestrator scraper.Orchestrator
	scheduler    worker.ScrapeScheduler
}

func NewAdminHandler(orchestrator scraper.Orchestrator, scheduler worker.ScrapeScheduler) *AdminHandler {
	return &AdminHandler{
		orchestrator: orchestrator,
		scheduler:    scheduler,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/admin")
	{
		router.GET("platforms", h.ListPlatforms)
		router.PUT("platforms/:platform/enable", h.EnablePlatform)
		router.PUT("platforms/:platform/disable", h.DisablePlatform)
		router.GET("statistics", h.Statistics)
		router.POST("scrapes", h.ScheduleScrape)
		router.GET("scrapes/:job_id", h.GetScheduledScrape)
		router.PUT("scrapes/:job_id", h.UpdateScheduledScrape)
		router.DELETE("scrapes/:job_id", h.CancelScheduledScrape)
	}
}

func (h *AdminHandler) ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"platforms": h.orchestrator.AvailablePlatforms(),
	})
}

func (h *AdminHandler) EnablePlatform(c *gin.Context) {
	h.togglePlatform(c, h.orchestrator.EnablePlatform, "EnablePlatform")
}

func (h *AdminHandler) DisablePlatform(c *gin.Context) {
	h.togglePlatform(c, h.orchestrator.DisablePlatform, "DisablePlatform")
}

func (h *AdminHandler) togglePlatform(c *gin.Context, toggle func(model.Platform) error, operation string) {
	p := model.Platform(c.Param("platform"))
	if err := toggle(p); err != nil {
		h.handleAdminError(c, err, operation)
		return
	}
	c.Status(http.StatusOK)
}

func (h *AdminHandler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.orchestrator.Statistics())
}

type scheduleScrapeRequest struct {
	Keywords        string   `json:"keywords" binding:"required"`
	Platforms       []string `json:"platforms"`
	MaxPrice        float64  `json:"max_price"`
	Currency        string   `json:"currency"`
	IntervalMinutes int      `json:"interval_minutes" binding:"required,min=1"`
}

func (r *scheduleScrapeRequest) searchOptions(c *gin.Context) (model.SearchOptions, bool) {
	opts := model.SearchOptions{
		MaxPrice: r.MaxPrice,
		Currency: r.Currency,
	}
	for _, raw := range r.Platforms {
		p := model.Platform(raw)
		if !p.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown platform: " + raw,
			})
			return model.SearchOptions{}, false
		}
		opts.Platforms = append(opts.Platforms, p)
	}
	return opts, true
}

func (h *AdminHandler) ScheduleScrape(c *gin.Context) {
	var req scheduleScrapeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	opts, ok := req.searchOptions(c)
	if !ok {
		return
	}

	jobID, err := h.scheduler.ScheduleRecurring(c, req.Keywords, opts, req.IntervalMinutes)
	if err != nil {
		h.handleAdminError(c, err, "ScheduleScrape")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"job_id": jobID,
	})
}

func (h *AdminHandler) GetScheduledScrape(c *gin.Context) {
	schedule, err := h.scheduler.GetScheduled(c, c.Param("job_id"))
	if err != nil {
		h.handleAdminError(c, err, "GetScheduledScrape")
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *AdminHandler) UpdateScheduledScrape(c *gin.Context) {
	var req scheduleScrapeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	opts, ok := req.searchOptions(c)
	if !ok {
		return
	}

	updated, err := h.scheduler.UpdateScheduled(c, c.Param("job_id"), req.Keywords, opts, req.IntervalMinutes)
	if err != nil {
		h.handleAdminError(c, err, "UpdateScheduledScrape")
		return
	}
	if !updated {
		h.handleAdminError(c, apperrors.ErrScheduleNotFound, "UpdateScheduledScrape")
		return
	}
	c.Status(http.StatusOK)
}

func (h *AdminHandler) CancelScheduledScrape(c *gin.Context) {
	cancelled, err := h.scheduler.CancelScheduled(c, c.Param("job_id"))
	if err != nil {
		h.handleAdminError(c, err, "CancelScheduledScrape")
		return
	}
	if !cancelled {
		h.handleAdminError(c, apperrors.ErrScheduleNotFound, "CancelScheduledScrape")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrPlatformNotEnabled):
		log.Warn("Unknown platform")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Unknown platform",
		})
	case errors.Is(err, apperrors.ErrScheduleNotFound):
		log.Warn("Scheduled scrape not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Scheduled scrape not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
