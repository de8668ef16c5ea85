package handler

import (
	"errors"
	"net/http"

	"hd-tickets/internal/model"
	"hd-tickets/internal/service"
	apperrors "hd-tickets/pkg/app_errors"
	"hd-tickets/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(service service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/purchases")
	{
		router.GET("", h.ListPurchases)
		router.GET("eligibility", h.CheckEligibility)
		router.POST("", h.CreatePurchase)
		router.GET(":purchase_id", h.GetPurchase)
		router.POST(":purchase_id/confirm", h.ConfirmPurchase)
		router.POST(":purchase_id/cancel", h.CancelPurchase)
	}
}

func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req model.CreatePurchaseRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreatePurchase(c, &req)
	if err != nil {
		h.handlePurchaseError(c, err, "CreatePurchase")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.service.GetPurchase(c, c.Param("purchase_id"))
	if err != nil {
		h.handlePurchaseError(c, err, "GetPurchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

type listPurchasesQuery struct {
	UserID int `form:"user_id" binding:"required"`
}

func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	var query listPurchasesQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	purchases, err := h.service.ListPurchases(c, query.UserID)
	if err != nil {
		h.handlePurchaseError(c, err, "ListPurchases")
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *PurchaseHandler) ConfirmPurchase(c *gin.Context) {
	purchase, err := h.service.ConfirmPurchase(c, c.Param("purchase_id"))
	if err != nil {
		h.handlePurchaseError(c, err, "ConfirmPurchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

type cancelPurchaseRequest struct {
	Reason string `json:"reason"`
}

func (h *PurchaseHandler) CancelPurchase(c *gin.Context) {
	var req cancelPurchaseRequest
	// body is optional, a bare cancel carries no reason
	_ = c.ShouldBindJSON(&req)

	purchase, err := h.service.CancelPurchase(c, c.Param("purchase_id"), req.Reason)
	if err != nil {
		h.handlePurchaseError(c, err, "CancelPurchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

type eligibilityQuery struct {
	UserID   int `form:"user_id" binding:"required"`
	TicketID int `form:"ticket_id" binding:"required"`
	Quantity int `form:"quantity" binding:"required,min=1"`
}

func (h *PurchaseHandler) CheckEligibility(c *gin.Context) {
	var query eligibilityQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	result, err := h.service.CheckEligibility(c, query.UserID, query.TicketID, query.Quantity)
	if err != nil {
		h.handlePurchaseError(c, err, "CheckEligibility")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PurchaseHandler) handlePurchaseError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrInvalidQuantity):
		log.Warn("Invalid quantity")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": apperrors.ErrInvalidQuantity.Error(),
		})
	case errors.Is(err, apperrors.ErrNotEligible):
		log.Warn("Purchase not allowed")
		c.JSON(http.StatusForbidden, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrInvalidStatus):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Invalid purchase status transition",
		})
	case errors.Is(err, apperrors.ErrPurchaseNotFound):
		log.Warn("Purchase not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Purchase not found",
		})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
