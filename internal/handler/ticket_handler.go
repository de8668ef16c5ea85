package handler

import (
	"errors"
	"net/http"
	"strings"

	"hd-tickets/internal/model"
	"hd-tickets/internal/scraper"
	"hd-tickets/internal/service"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	orchestrator scraper.Orchestrator
	ingest       service.IngestService
}

func NewTicketHandler(orchestrator scraper.Orchestrator, ingest service.IngestService) *TicketHandler {
	return &TicketHandler{
		orchestrator: orchestrator,
		ingest:       ingest,
	}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/tickets")
	{
		router.GET("search", h.SearchTickets)
		router.GET("trending", h.Trending)
		router.GET("deals", h.BestDeals)
	}
}

type searchTicketsQuery struct {
	Keyword   string  `form:"keyword" binding:"required"`
	Platforms string  `form:"platforms"`
	MaxPrice  float64 `form:"max_price"`
	Currency  string  `form:"currency"`
}

func (h *TicketHandler) SearchTickets(c *gin.Context) {
	var query searchTicketsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	opts := model.SearchOptions{
		MaxPrice: query.MaxPrice,
		Currency: query.Currency,
	}
	for _, raw := range strings.Split(query.Platforms, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p := model.Platform(raw)
		if !p.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown platform: " + raw,
			})
			return
		}
		opts.Platforms = append(opts.Platforms, p)
	}

	results, err := h.orchestrator.SearchTickets(c, query.Keyword, opts)
	if err != nil {
		h.handleTicketError(c, err, "SearchTickets")
		return
	}

	summary, err := h.ingest.IngestBatch(c, flatten(results))
	if err != nil {
		h.handleTicketError(c, err, "SearchTickets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"summary": summary,
	})
}

func (h *TicketHandler) Trending(c *gin.Context) {
	keyword := c.Query("keyword")
	tickets, err := h.ingest.Trending(c, keyword, 20)
	if err != nil {
		h.handleTicketError(c, err, "Trending")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) BestDeals(c *gin.Context) {
	tickets, err := h.ingest.BestDeals(c, 20)
	if err != nil {
		h.handleTicketError(c, err, "BestDeals")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func flatten(results map[model.Platform][]model.ScrapedTicketData) []model.ScrapedTicketData {
	var all []model.ScrapedTicketData
	for _, tickets := range results {
		all = append(all, tickets...)
	}
	return all
}

func (h *TicketHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrPlatformNotEnabled):
		log.Warn("Platform not enabled")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Platform not enabled",
		})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
