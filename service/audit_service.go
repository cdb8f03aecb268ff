package service

import (
	"context"
	"fmt"

	"raffler/models"
)

type auditService struct {
	uowFactory UnitOfWorkFactory
}

// NewAuditService creates a new audit service
func NewAuditService(uowFactory UnitOfWorkFactory) AuditService {
	return &auditService{
		uowFactory: uowFactory,
	}
}

func (s *auditService) Trail(ctx context.Context, targetType, targetID string, limit int) ([]*models.AuditEvent, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	auditEvents, err := uow.AuditEventRepository().ListByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}

	return auditEvents, nil
}

func (s *auditService) Recent(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	auditEvents, err := uow.AuditEventRepository().ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent audit events: %w", err)
	}

	return auditEvents, nil
}
