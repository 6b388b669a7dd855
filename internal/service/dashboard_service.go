package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
	dashboardTopPlansLimit = 5
)

// DashboardService aggregates the backoffice home figures.
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardQueryInput selects the reporting window.
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

// DashboardOverviewResponse is the overview payload.
type DashboardOverviewResponse struct {
	Range    string               `json:"range"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Timezone string               `json:"timezone"`
	Currency string               `json:"currency"`
	KPI      DashboardKPI         `json:"kpi"`
	Alerts   []DashboardAlertItem `json:"alerts"`
}

// DashboardKPI carries the core figures. Order and signup numbers are
// windowed; subscription, ledger and workload numbers are live state.
type DashboardKPI struct {
	OrdersTotal           int64  `json:"orders_total"`
	PaidOrders            int64  `json:"paid_orders"`
	PendingOrders         int64  `json:"pending_orders"`
	RevenuePaid           string `json:"revenue_paid"`
	NewUsers              int64  `json:"new_users"`
	ActiveSubscriptions   int64  `json:"active_subscriptions"`
	TrialingSubscriptions int64  `json:"trialing_subscriptions"`
	PastDueSubscriptions  int64  `json:"past_due_subscriptions"`
	CommissionPending     string `json:"commission_pending"`
	CommissionAvailable   string `json:"commission_available"`
	OpenWithdrawals       int64  `json:"open_withdrawals"`
	OpenWithdrawalAmount  string `json:"open_withdrawal_amount"`
	OpenDataRequests      int64  `json:"open_data_requests"`
}

// DashboardAlertItem flags pending backoffice work.
type DashboardAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value int64  `json:"value"`
}

// DashboardTrendResponse is the per-day series payload.
type DashboardTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []DashboardTrendPoint `json:"points"`
	TopPlans []DashboardPlanTotal  `json:"top_plans"`
}

// DashboardTrendPoint is one day of settled revenue and signups.
type DashboardTrendPoint struct {
	Date        string `json:"date"`
	OrdersPaid  int64  `json:"orders_paid"`
	RevenuePaid string `json:"revenue_paid"`
	NewUsers    int64  `json:"new_users"`
}

// DashboardPlanTotal is one plan's settled sales in the window.
type DashboardPlanTotal struct {
	PlanID     uint   `json:"plan_id"`
	PlanName   string `json:"plan_name"`
	PaidOrders int64  `json:"paid_orders"`
	PaidAmount string `json:"paid_amount"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
	timezone string
}

// GetOverview builds the overview for the requested window.
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d:%s",
		window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Currency: constants.SiteCurrencyDefault,
		KPI: DashboardKPI{
			OrdersTotal:           overview.OrdersTotal,
			PaidOrders:            overview.PaidOrders,
			PendingOrders:         overview.PendingOrders,
			RevenuePaid:           formatMoneyValue(overview.RevenuePaid),
			NewUsers:              overview.NewUsers,
			ActiveSubscriptions:   overview.ActiveSubscriptions,
			TrialingSubscriptions: overview.TrialingSubscriptions,
			PastDueSubscriptions:  overview.PastDueSubscriptions,
			CommissionPending:     formatMoneyValue(overview.CommissionPending),
			CommissionAvailable:   formatMoneyValue(overview.CommissionAvailable),
			OpenWithdrawals:       overview.OpenWithdrawals,
			OpenWithdrawalAmount:  formatMoneyValue(overview.OpenWithdrawalAmount),
			OpenDataRequests:      overview.OpenDataRequests,
		},
		Alerts: buildDashboardAlerts(overview),
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetTrends builds the per-day series plus the plan ranking.
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}
	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d:%s",
		window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	trendRows, err := s.repo.GetRevenueTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	planRows, err := s.repo.GetTopPlans(window.startAt, window.endAt, dashboardTopPlansLimit)
	if err != nil {
		return nil, err
	}

	trendMap := make(map[string]repository.DashboardRevenueTrendRow, len(trendRows))
	for _, row := range trendRows {
		trendMap[row.Day] = row
	}

	points := make([]DashboardTrendPoint, 0)
	dayStart := time.Date(window.startAt.Year(), window.startAt.Month(), window.startAt.Day(), 0, 0, 0, 0, window.startAt.Location())
	for cursor := dayStart; cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		row := trendMap[day]
		points = append(points, DashboardTrendPoint{
			Date:        day,
			OrdersPaid:  row.OrdersPaid,
			RevenuePaid: formatMoneyValue(row.Revenue),
			NewUsers:    row.NewUsers,
		})
	}

	topPlans := make([]DashboardPlanTotal, 0, len(planRows))
	for _, row := range planRows {
		name := strings.TrimSpace(row.PlanName)
		if name == "" {
			name = "-"
		}
		topPlans = append(topPlans, DashboardPlanTotal{
			PlanID:     row.PlanID,
			PlanName:   name,
			PaidOrders: row.PaidOrders,
			PaidAmount: formatMoneyValue(row.PaidAmount),
		})
	}

	response := &DashboardTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
		TopPlans: topPlans,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func buildDashboardAlerts(overview repository.DashboardOverviewRow) []DashboardAlertItem {
	alerts := make([]DashboardAlertItem, 0, 3)
	if overview.PastDueSubscriptions > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "past_due_subscriptions", Level: "warning", Value: overview.PastDueSubscriptions})
	}
	if overview.OpenWithdrawals > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "open_withdrawals", Level: "warning", Value: overview.OpenWithdrawals})
	}
	if overview.OpenDataRequests > 0 {
		alerts = append(alerts, DashboardAlertItem{Type: "open_data_requests", Level: "warning", Value: overview.OpenDataRequests})
	}
	return alerts
}

func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}

	timezone := strings.TrimSpace(input.Timezone)
	location := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			location = parsed
		} else {
			timezone = ""
		}
	}
	if timezone == "" {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := dashboardWindow{rangeKey: rangeKey, timezone: timezone}

	switch rangeKey {
	case "today":
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.In(location)
		endAt := input.To.In(location)
		if endAt.Before(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if endAt.Sub(startAt) > time.Hour*24*dashboardCustomMaxDays {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt.Add(time.Second)
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

func formatMoneyValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
