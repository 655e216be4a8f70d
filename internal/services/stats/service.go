package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harborexpo/backend/internal/domain/enums"
	"github.com/harborexpo/backend/internal/services/accounts"
)

const (
	dashboardCacheKey = "stats:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

type RegistrantCounter interface {
	CountByApprovalStatus(ctx context.Context) (map[enums.ApprovalStatus]int, error)
	CountByAccountType(ctx context.Context) (map[enums.AccountType]int, error)
}

type ReportCounter interface {
	CountOpen(ctx context.Context) (int, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RegistrantCounts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Validated   int `json:"validated"`
	Rejected    int `json:"rejected"`
	Deactivated int `json:"deactivated"`
}

type Dashboard struct {
	Registrants     RegistrantCounts `json:"registrants"`
	ByAccountType   map[string]int   `json:"by_account_type"`
	OpenReports     int              `json:"open_reports"`
	ReviewETA       string           `json:"review_eta"`
	GeneratedAt     time.Time        `json:"generated_at"`
	ServedFromCache bool             `json:"-"`
}

type Service struct {
	registrants RegistrantCounter
	reports     ReportCounter
	cache       Cache
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewService(registrants RegistrantCounter, reports ReportCounter, cache Cache) *Service {
	return &Service{
		registrants: registrants,
		reports:     reports,
		cache:       cache,
		cacheTTL:    dashboardCacheTTL,
		now:         time.Now,
	}
}

// Dashboard aggregates the admin landing page counters. The result is cached
// briefly; the numbers are informative and a few seconds of staleness is fine.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s.registrants == nil || s.reports == nil {
		return Dashboard{}, fmt.Errorf("stats service dependencies are not configured")
	}

	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	byStatus, err := s.registrants.CountByApprovalStatus(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count registrants by status: %w", err)
	}
	byType, err := s.registrants.CountByAccountType(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count registrants by type: %w", err)
	}
	openReports, err := s.reports.CountOpen(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count open reports: %w", err)
	}

	counts := RegistrantCounts{
		Pending:     byStatus[enums.ApprovalStatusPending],
		Validated:   byStatus[enums.ApprovalStatusValidated],
		Rejected:    byStatus[enums.ApprovalStatusRejected],
		Deactivated: byStatus[enums.ApprovalStatusDeactivated],
	}
	counts.Total = counts.Pending + counts.Validated + counts.Rejected + counts.Deactivated

	typeCounts := make(map[string]int, len(byType))
	for accountType, count := range byType {
		typeCounts[string(accountType)] = count
	}

	dashboard := Dashboard{
		Registrants:   counts,
		ByAccountType: typeCounts,
		OpenReports:   openReports,
		ReviewETA:     accounts.ReviewETABucketFromQueueSize(counts.Pending),
		GeneratedAt:   s.now().UTC(),
	}

	s.toCache(ctx, dashboard)
	return dashboard, nil
}

func (s *Service) fromCache(ctx context.Context) (Dashboard, bool) {
	if s.cache == nil {
		return Dashboard{}, false
	}

	raw, err := s.cache.Get(ctx, dashboardCacheKey)
	if err != nil || len(raw) == 0 {
		return Dashboard{}, false
	}

	var dashboard Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return Dashboard{}, false
	}
	dashboard.ServedFromCache = true
	return dashboard, true
}

func (s *Service) toCache(ctx context.Context, dashboard Dashboard) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL)
}
