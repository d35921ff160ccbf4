package service

import (
	"context"
	"fmt"

	"sphere/internal/cache"
	"sphere/internal/model"
)

const (
	auditActionsCacheKey     = "portal:catalog:audit_actions"
	auditEntityTypesCacheKey = "portal:catalog:audit_entity_types"
)

// AuditLogService reads the backend audit trail.
type AuditLogService interface {
	List(ctx context.Context, filters model.AuditLogFilters) (*model.AuditLogPage, error)
	Get(ctx context.Context, id uint) (*model.AuditLog, error)
	AvailableActions(ctx context.Context) ([]string, error)
	AvailableEntityTypes(ctx context.Context) ([]string, error)
}

type auditLogService struct {
	api   API
	cache *cache.Client
}

// NewAuditLogService builds an AuditLogService over api. cache may be nil.
func NewAuditLogService(api API, cache *cache.Client) AuditLogService {
	return &auditLogService{api: api, cache: cache}
}

// List returns one page of logs. Empty filters are not sent.
func (s *auditLogService) List(ctx context.Context, filters model.AuditLogFilters) (*model.AuditLogPage, error) {
	var logs []model.AuditLog
	env, err := fetch(ctx, s.api, "/audit-logs", filters.Values(), &logs, "Failed to fetch audit logs")
	if err != nil {
		return nil, err
	}

	page := &model.AuditLogPage{Logs: logs}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

func (s *auditLogService) Get(ctx context.Context, id uint) (*model.AuditLog, error) {
	var entry model.AuditLog
	if _, err := fetch(ctx, s.api, fmt.Sprintf("/audit-logs/%d", id), nil, &entry, "Failed to fetch audit log"); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *auditLogService) AvailableActions(ctx context.Context) ([]string, error) {
	return s.filterValues(ctx, auditActionsCacheKey, "/audit-logs/filters/actions", "Failed to fetch available actions")
}

func (s *auditLogService) AvailableEntityTypes(ctx context.Context) ([]string, error) {
	return s.filterValues(ctx, auditEntityTypesCacheKey, "/audit-logs/filters/entity-types", "Failed to fetch available entity types")
}

func (s *auditLogService) filterValues(ctx context.Context, key, path, fallback string) ([]string, error) {
	return cachedCatalog(ctx, s.cache, key, func() ([]string, error) {
		var values []string
		if _, err := fetch(ctx, s.api, path, nil, &values, fallback); err != nil {
			return nil, err
		}
		return values, nil
	})
}
