package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"hd-tickets/internal/model"
	"hd-tickets/internal/service"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertHandler struct {
	service service.AlertService
}

func NewAlertHandler(service service.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/alerts")
	{
		router.GET("", h.ListAlerts)
		router.POST("", h.CreateAlert)
		router.POST("check", h.CheckAlerts)
		router.PUT(":id/activate", h.ActivateAlert)
		router.PUT(":id/deactivate", h.DeactivateAlert)
	}
}

type createAlertRequest struct {
	UserID               int      `json:"user_id" binding:"required"`
	Keywords             string   `json:"keywords" binding:"required"`
	Platform             *string  `json:"platform,omitempty"`
	MaxPrice             float64  `json:"max_price"`
	Currency             string   `json:"currency"`
	Channels             []string `json:"channels" binding:"required"`
	CheckIntervalMinutes int      `json:"check_interval_minutes"`
}

func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	alert := &model.TicketAlert{
		UserID:        req.UserID,
		Keywords:      req.Keywords,
		MaxPrice:      req.MaxPrice,
		Currency:      req.Currency,
		IsActive:      true,
		CheckInterval: time.Duration(req.CheckIntervalMinutes) * time.Minute,
	}

	if req.Platform != nil {
		p := model.Platform(*req.Platform)
		if !p.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown platform: " + *req.Platform,
			})
			return
		}
		alert.Platform = &p
	}

	for _, raw := range req.Channels {
		ch := model.NotificationChannel(raw)
		if !ch.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown notification channel: " + raw,
			})
			return
		}
		alert.Channels = append(alert.Channels, ch)
	}

	created, err := h.service.CreateAlert(c, alert)
	if err != nil {
		h.handleAlertError(c, err, "CreateAlert")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.service.ListAlerts(c)
	if err != nil {
		h.handleAlertError(c, err, "ListAlerts")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// CheckAlerts runs one synchronous check cycle, outside the scheduler tick.
func (h *AlertHandler) CheckAlerts(c *gin.Context) {
	processed, err := h.service.CheckAlerts(c)
	if err != nil {
		h.handleAlertError(c, err, "CheckAlerts")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts_processed": processed,
	})
}

func (h *AlertHandler) ActivateAlert(c *gin.Context) {
	h.setActive(c, true, "ActivateAlert")
}

func (h *AlertHandler) DeactivateAlert(c *gin.Context) {
	h.setActive(c, false, "DeactivateAlert")
}

func (h *AlertHandler) setActive(c *gin.Context, active bool, operation string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleAlertError(c, err, operation)
		return
	}
	if err := h.service.SetAlertActive(c, id, active); err != nil {
		h.handleAlertError(c, err, operation)
		return
	}
	c.Status(http.StatusOK)
}

func (h *AlertHandler) handleAlertError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrAlertNotFound):
		log.Warn("Alert not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Alert not found",
		})
	case errors.Is(err, strconv.ErrSyntax):
		log.Warn("Invalid alert id")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid alert id",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
