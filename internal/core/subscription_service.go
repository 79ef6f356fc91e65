package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/pkg/messagequeue"
)

type subscriptionService struct {
	subRepo      db.SubscriptionRepository
	planRepo     db.PlanRepository
	storeRepo    db.StoreRepository
	gateway      BillingGateway
	auditService AuditService
	events       messagequeue.Publisher
	notifier     Notifier
	backURL      string
	logger       *zap.Logger
}

// SubscriptionServiceDeps groups the collaborators of the subscription service.
// Notifier and Events are optional.
type SubscriptionServiceDeps struct {
	Subscriptions db.SubscriptionRepository
	Plans         db.PlanRepository
	Stores        db.StoreRepository
	Gateway       BillingGateway
	Audit         AuditService
	Events        messagequeue.Publisher
	Notifier      Notifier
	// BackURL is where MercadoPago sends the payer after checkout.
	BackURL string
	Logger  *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService instance.
func NewSubscriptionService(deps SubscriptionServiceDeps) SubscriptionService {
	return &subscriptionService{
		subRepo:      deps.Subscriptions,
		planRepo:     deps.Plans,
		storeRepo:    deps.Stores,
		gateway:      deps.Gateway,
		auditService: deps.Audit,
		events:       deps.Events,
		notifier:     deps.Notifier,
		backURL:      deps.BackURL,
		logger:       deps.Logger,
	}
}

// subscriptionStatusFrom maps a preapproval status to the local lifecycle.
func subscriptionStatusFrom(processorStatus string) (models.SubscriptionStatus, bool) {
	switch processorStatus {
	case mercadopago.StatusPending:
		return models.SubscriptionStatusPending, true
	case mercadopago.StatusAuthorized:
		return models.SubscriptionStatusActive, true
	case mercadopago.StatusPaused:
		return models.SubscriptionStatusPaused, true
	case mercadopago.StatusCancelled:
		return models.SubscriptionStatusCancelled, true
	}
	return "", false
}

// CreatePlan registers the plan with MercadoPago first and stores it with the
// processor's plan id.
func (s *subscriptionService) CreatePlan(ctx context.Context, actorID string, req models.CreatePlanRequest) (*models.Plan, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	remote, err := s.gateway.CreatePlan(ctx, mercadopago.PlanRequest{
		Reason: req.Name,
		AutoRecurring: mercadopago.AutoRecurring{
			Frequency:         req.Frequency.Months(),
			FrequencyType:     mercadopago.FrequencyMonths,
			TransactionAmount: req.Price,
			CurrencyID:        req.Currency,
		},
		BackURL: s.backURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plan at payment processor: %w", err)
	}

	plan := &models.Plan{
		Name:        req.Name,
		Price:       req.Price,
		Currency:    req.Currency,
		Frequency:   req.Frequency,
		ProcessorID: remote.ID,
		Active:      true,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to store plan '%s' (processor id %s): %w", req.Name, remote.ID, err)
	}
	plan.ID = planID
	plan.CreatedAt = time.Now().UTC()

	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     actorID,
		Action:     ActionPlanCreate,
		TargetType: "PLAN",
		TargetID:   planID,
		Details:    map[string]interface{}{"name": plan.Name, "processorId": plan.ProcessorID},
	})
	return plan, nil
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (s *subscriptionService) GetCurrent(ctx context.Context, storeID string) (*models.Subscription, error) {
	sub, err := s.subRepo.GetCurrentByStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: store '%s'", ErrSubscriptionNotFound, storeID)
		}
		return nil, fmt.Errorf("failed to get subscription of store '%s': %w", storeID, err)
	}
	return sub, nil
}

// Subscribe creates a pending preapproval for the plan. The payer completes it at
// the returned InitPoint; the webhook moves it to active.
func (s *subscriptionService) Subscribe(ctx context.Context, storeID, userID string, req models.SubscribeRequest) (*models.Subscription, error) {
	if err := validateValue("payerEmail", req.PayerEmail, "required,email"); err != nil {
		return nil, err
	}

	if current, err := s.GetCurrent(ctx, storeID); err == nil {
		return nil, fmt.Errorf("%w: '%s' is %s", ErrSubscriptionExists, current.ID, current.Status)
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlanNotFound, req.PlanID)
		}
		return nil, fmt.Errorf("failed to get plan '%s': %w", req.PlanID, err)
	}
	if !plan.Active {
		return nil, fmt.Errorf("%w: '%s' is no longer offered", ErrPlanNotFound, req.PlanID)
	}

	remote, err := s.gateway.CreatePreapproval(ctx, mercadopago.PreapprovalRequest{
		PreapprovalPlanID: plan.ProcessorID,
		Reason:            plan.Name,
		ExternalReference: storeID,
		PayerEmail:        req.PayerEmail,
		BackURL:           s.backURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription at payment processor: %w", err)
	}

	status, ok := subscriptionStatusFrom(remote.Status)
	if !ok {
		status = models.SubscriptionStatusPending
	}
	now := time.Now().UTC()
	sub := &models.Subscription{
		StoreID:     storeID,
		PlanID:      plan.ID,
		Frequency:   plan.Frequency,
		Status:      status,
		ProcessorID: remote.ID,
		InitPoint:   remote.InitPoint,
		PayerEmail:  req.PayerEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	subID, err := s.subRepo.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to store subscription (processor id %s): %w", remote.ID, err)
	}
	sub.ID = subID

	s.statusChanged(ctx, sub, "", userID)
	return sub, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, storeID, userID string) (*models.Subscription, error) {
	return s.transition(ctx, storeID, userID, models.SubscriptionStatusCancelled, s.gateway.CancelPreapproval,
		models.SubscriptionStatusPending, models.SubscriptionStatusActive, models.SubscriptionStatusPaused)
}

func (s *subscriptionService) Pause(ctx context.Context, storeID, userID string) (*models.Subscription, error) {
	return s.transition(ctx, storeID, userID, models.SubscriptionStatusPaused, s.gateway.PausePreapproval,
		models.SubscriptionStatusActive)
}

func (s *subscriptionService) Resume(ctx context.Context, storeID, userID string) (*models.Subscription, error) {
	return s.transition(ctx, storeID, userID, models.SubscriptionStatusActive, s.gateway.ResumePreapproval,
		models.SubscriptionStatusPaused)
}

func (s *subscriptionService) transition(
	ctx context.Context,
	storeID, userID string,
	target models.SubscriptionStatus,
	call func(context.Context, string) (*mercadopago.Preapproval, error),
	from ...models.SubscriptionStatus,
) (*models.Subscription, error) {
	sub, err := s.GetCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if sub.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidSubscriptionState, sub.Status, target)
	}

	remote, err := call(ctx, sub.ProcessorID)
	if err != nil {
		return nil, fmt.Errorf("failed to change subscription '%s' to %s at payment processor: %w", sub.ID, target, err)
	}
	status, ok := subscriptionStatusFrom(remote.Status)
	if !ok {
		status = target
	}
	return s.applyStatus(ctx, sub, status, userID)
}

// Sync pulls the processor state of the store's current subscription.
func (s *subscriptionService) Sync(ctx context.Context, storeID string) (*models.Subscription, error) {
	sub, err := s.GetCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.syncFromProcessor(ctx, sub, "")
}

// HandleNotification syncs the subscription a webhook refers to. Notifications for
// other resource types, or for subscriptions this service did not create, are
// acknowledged and ignored.
func (s *subscriptionService) HandleNotification(ctx context.Context, n *mercadopago.Notification) error {
	if n == nil || !n.IsPreapproval() {
		return nil
	}

	sub, err := s.subRepo.GetByProcessorID(ctx, n.Data.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("Webhook for unknown subscription", zap.String("processor_id", n.Data.ID), zap.String("action", n.Action))
			return nil
		}
		return fmt.Errorf("failed to look up subscription for processor id '%s': %w", n.Data.ID, err)
	}

	_, err = s.syncFromProcessor(ctx, sub, "")
	return err
}

func (s *subscriptionService) syncFromProcessor(ctx context.Context, sub *models.Subscription, actorID string) (*models.Subscription, error) {
	remote, err := s.gateway.GetPreapproval(ctx, sub.ProcessorID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription '%s' from payment processor: %w", sub.ID, err)
	}
	status, ok := subscriptionStatusFrom(remote.Status)
	if !ok {
		s.logger.Warn("Unknown processor subscription status",
			zap.String("subscription_id", sub.ID),
			zap.String("status", remote.Status))
		return sub, nil
	}
	return s.applyStatus(ctx, sub, status, actorID)
}

// applyStatus persists a status change and mirrors it onto the store summary. An
// unchanged status writes nothing.
func (s *subscriptionService) applyStatus(ctx context.Context, sub *models.Subscription, status models.SubscriptionStatus, actorID string) (*models.Subscription, error) {
	if sub.Status == status {
		return sub, nil
	}
	previous := sub.Status
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription '%s': %w", sub.ID, err)
	}
	s.statusChanged(ctx, sub, previous, actorID)
	return sub, nil
}

func (s *subscriptionService) statusChanged(ctx context.Context, sub *models.Subscription, previous models.SubscriptionStatus, actorID string) {
	summary := map[string]interface{}{
		"subscription.planId":         sub.PlanID,
		"subscription.status":         string(sub.Status),
		"subscription.subscriptionId": sub.ID,
	}
	if err := s.storeRepo.UpdateFields(ctx, sub.StoreID, summary); err != nil {
		s.logger.Warn("Failed to update store subscription summary",
			zap.String("store_id", sub.StoreID),
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
	}

	details := map[string]interface{}{
		"subscriptionId": sub.ID,
		"planId":         sub.PlanID,
		"from":           string(previous),
		"to":             string(sub.Status),
	}
	userID := actorID
	if userID == "" {
		userID = "mercadopago"
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		StoreID:    sub.StoreID,
		Action:     ActionSubscriptionChange,
		TargetType: "SUBSCRIPTION",
		TargetID:   sub.ID,
		Details:    details,
	})
	publishEvent(ctx, s.events, s.logger, EventSubscriptionStatusChanged, sub.StoreID, details)
	s.notify(sub)
}

func (s *subscriptionService) notify(sub *models.Subscription) {
	if s.notifier == nil || sub.PayerEmail == "" {
		return
	}
	subject := fmt.Sprintf("Your subscription is now %s", sub.Status)
	body := fmt.Sprintf("Hello,\n\nThe subscription %s for your store changed status to %s.\n", sub.ID, sub.Status)
	if sub.Status == models.SubscriptionStatusPending && sub.InitPoint != "" {
		body += fmt.Sprintf("\nComplete the payment here: %s\n", sub.InitPoint)
	}
	if err := s.notifier.SendEmail(sub.PayerEmail, subject, body); err != nil {
		s.logger.Warn("Failed to send subscription notification",
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
	}
}
