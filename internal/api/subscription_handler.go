package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/models"
)

const maxWebhookBody = 64 << 10

// SubscriptionHandler handles plans, the store's subscription and processor webhooks.
type SubscriptionHandler struct {
	subscriptionService core.SubscriptionService
	webhookSecret       string
	logger              *zap.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler. An empty webhookSecret
// disables signature verification.
func NewSubscriptionHandler(ss core.SubscriptionService, webhookSecret string, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: ss, webhookSecret: webhookSecret, logger: logger}
}

// ListPlans handles GET /plans.
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// CreatePlan handles POST /admin/plans.
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.subscriptionService.CreatePlan(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetSubscription handles GET /subscription. A store without a subscription gets a
// null subscription alongside the plan list.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	sub, err := h.subscriptionService.GetCurrent(ctx, storeID(c))
	if err != nil && !errors.Is(err, core.ErrSubscriptionNotFound) {
		respondError(c, h.logger, err)
		return
	}
	plans, err := h.subscriptionService.ListPlans(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	c.JSON(http.StatusOK, SubscriptionOverview{Subscription: sub, Plans: plans})
}

// Subscribe handles POST /subscription. The response carries the processor checkout
// URL in initPoint.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), storeID(c), userID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.subscriptionService.Cancel)
}

func (h *SubscriptionHandler) Pause(c *gin.Context) {
	h.transition(c, h.subscriptionService.Pause)
}

func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.transition(c, h.subscriptionService.Resume)
}

func (h *SubscriptionHandler) transition(c *gin.Context, fn func(ctx context.Context, storeID, userID string) (*models.Subscription, error)) {
	sub, err := fn(c.Request.Context(), storeID(c), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Sync handles POST /subscription/sync.
func (h *SubscriptionHandler) Sync(c *gin.Context) {
	sub, err := h.subscriptionService.Sync(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Webhook handles POST /webhooks/mercadopago. Any non-2xx answer makes the processor
// retry the delivery, so only processing failures are reported as errors.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, err)
		return
	}

	notification, err := mercadopago.ParseNotification(body)
	if err != nil {
		h.logger.Warn("Rejected webhook payload", zap.Error(err))
		badRequest(c, err)
		return
	}

	if h.webhookSecret != "" {
		dataID := c.Query("data.id")
		if dataID == "" {
			dataID = notification.Data.ID
		}
		err := mercadopago.VerifySignature(h.webhookSecret, c.GetHeader("x-signature"), c.GetHeader("x-request-id"), dataID)
		if err != nil {
			h.logger.Warn("Webhook signature check failed", zap.String("data_id", dataID), zap.Error(err))
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid signature"})
			return
		}
	}

	if err := h.subscriptionService.HandleNotification(c.Request.Context(), notification); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
