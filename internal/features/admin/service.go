package admin

import (
	"context"
	"math"

	"github.com/aryanracha/civiclens/internal/features/issues"
)

// recentFeedSize is how many issues the dashboard live feed shows.
const recentFeedSize = 5

// IssueStats is the aggregation surface the dashboard needs from the issues
// repository.
type IssueStats interface {
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByRiskLevels(ctx context.Context, levels []string) (int64, error)
	CountPendingAudits(ctx context.Context) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]issues.Issue, error)
}

// DashboardStats is the admin overview aggregation.
type DashboardStats struct {
	TotalReports   int64          `json:"totalReports"`
	HighRisk       int64          `json:"highRisk"`
	Resolved       int64          `json:"resolved"`
	ResolutionRate float64        `json:"resolutionRate"`
	PendingAudits  int64          `json:"pendingAudits"`
	RecentIssues   []issues.Issue `json:"recentIssues"`
}

// Service assembles admin dashboard data.
type Service struct {
	stats IssueStats
}

func NewService(stats IssueStats) *Service {
	return &Service{stats: stats}
}

// Dashboard gathers the overview counters: total issues, how many audits
// landed High or Critical, the resolution rate as a percentage rounded to
// one decimal, unaudited issues, and a short feed of the newest submissions.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	total, err := s.stats.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	highRisk, err := s.stats.CountByRiskLevels(ctx, []string{issues.RiskHigh, issues.RiskCritical})
	if err != nil {
		return nil, err
	}

	resolved, err := s.stats.CountByStatus(ctx, issues.StatusResolved)
	if err != nil {
		return nil, err
	}

	pending, err := s.stats.CountPendingAudits(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.stats.FindRecent(ctx, recentFeedSize)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []issues.Issue{}
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(resolved)/float64(total)*1000) / 10
	}

	return &DashboardStats{
		TotalReports:   total,
		HighRisk:       highRisk,
		Resolved:       resolved,
		ResolutionRate: rate,
		PendingAudits:  pending,
		RecentIssues:   recent,
	}, nil
}
