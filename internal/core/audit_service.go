package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/models"
)

// Audit actions.
const (
	ActionStoreCreate        = "STORE_CREATE"
	ActionSectionUpdate      = "STORE_SECTION_UPDATE"
	ActionProductCreate      = "PRODUCT_CREATE"
	ActionProductUpdate      = "PRODUCT_UPDATE"
	ActionProductDelete      = "PRODUCT_DELETE"
	ActionCategoryCreate     = "CATEGORY_CREATE"
	ActionCategoryUpdate     = "CATEGORY_UPDATE"
	ActionCategoryDelete     = "CATEGORY_DELETE"
	ActionTagCreate          = "TAG_CREATE"
	ActionTagUpdate          = "TAG_UPDATE"
	ActionTagDelete          = "TAG_DELETE"
	ActionClaimsUpdate       = "CLAIMS_UPDATE"
	ActionUserDisable        = "USER_DISABLE"
	ActionUserEnable         = "USER_ENABLE"
	ActionUserDelete         = "USER_DELETE"
	ActionPlanCreate         = "PLAN_CREATE"
	ActionSubscriptionChange = "SUBSCRIPTION_CHANGE"
)

type auditService struct {
	auditRepo db.AuditRepository
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if s.auditRepo == nil {
		return fmt.Errorf("AuditRepository not initialized in AuditService")
	}
	if logEntry.Timestamp.IsZero() {
		logEntry.Timestamp = time.Now().UTC()
	}
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// recordAudit writes an audit entry. A failure is logged and never fails the caller.
func recordAudit(ctx context.Context, as AuditService, logger *zap.Logger, entry models.AuditLog) {
	if as == nil {
		return
	}
	if err := as.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to create audit log",
			zap.String("action", entry.Action),
			zap.String("target_id", entry.TargetID),
			zap.Error(err))
	}
}
