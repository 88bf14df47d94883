package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"fabricstore/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxBeaconBytes = 64 << 10

type orderHandlers struct {
	svc    orderService
	logger *zap.Logger
}

// beacon accepts the fire-and-forget submission. Beacons usually arrive as
// text/plain, so the body is decoded regardless of Content-Type.
func (h *orderHandlers) beacon(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBeaconBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	var sub domain.OrderSubmission
	if err := json.Unmarshal(raw, &sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	o, err := h.svc.Submit(c.Request.Context(), withRequestID(c, sub))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": o.ID, "orderNumber": o.OrderNumber})
}

func (h *orderHandlers) create(c *gin.Context) {
	var sub domain.OrderSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	o, err := h.svc.Submit(c.Request.Context(), withRequestID(c, sub))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*o))
}

// withRequestID fills the submission's idempotency key from X-Request-ID
// when the body does not carry one.
func withRequestID(c *gin.Context, sub domain.OrderSubmission) domain.OrderSubmission {
	if strings.TrimSpace(sub.RequestID) == "" {
		sub.RequestID = c.GetHeader("X-Request-ID")
	}
	return sub
}

func (h *orderHandlers) track(c *gin.Context) {
	info, err := h.svc.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrackingResponse(*info))
}

func (h *orderHandlers) trackByNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Query("orderNumber"))
	phone := strings.TrimSpace(c.Query("phone"))
	if number == "" || phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderNumber and phone are required"})
		return
	}
	info, err := h.svc.TrackByNumber(c.Request.Context(), number, phone)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrackingResponse(*info))
}

func (h *orderHandlers) myOrders(c *gin.Context) {
	orders, err := h.svc.ListForCustomer(c.Request.Context(), customerToken(c.Request.Context()))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderListResponse(orders))
}

func (h *orderHandlers) updateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	o, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), status, req.TrackingNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *orderHandlers) issueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerPhone required"})
		return
	}
	token, expiresAt, err := h.svc.IssueToken(c.Request.Context(), req.CustomerPhone, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issueTokenResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *orderHandlers) writeError(c *gin.Context, err error) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, gin.H{"error": fe.Message, "field": fe.Field})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("http: request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
