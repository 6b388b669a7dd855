package repository

import (
	"fmt"
	"time"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository aggregates backoffice statistics. Queries only,
// no business rules.
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetRevenueTrends(startAt, endAt time.Time) ([]DashboardRevenueTrendRow, error)
	GetTopPlans(startAt, endAt time.Time, limit int) ([]DashboardPlanRankingRow, error)
}

// DashboardOverviewRow is the raw overview aggregate. Order and user
// figures are windowed; subscription, ledger and workload figures are
// the current state.
type DashboardOverviewRow struct {
	OrdersTotal           int64
	PaidOrders            int64
	PendingOrders         int64
	RevenuePaid           float64
	NewUsers              int64
	ActiveSubscriptions   int64
	TrialingSubscriptions int64
	PastDueSubscriptions  int64
	CommissionPending     float64
	CommissionAvailable   float64
	OpenWithdrawals       int64
	OpenWithdrawalAmount  float64
	OpenDataRequests      int64
}

// DashboardRevenueTrendRow is one day of settled revenue.
type DashboardRevenueTrendRow struct {
	Day        string
	OrdersPaid int64
	Revenue    float64
	NewUsers   int64
}

// DashboardPlanRankingRow is one plan's settled sales in the window.
type DashboardPlanRankingRow struct {
	PlanID     uint
	PlanName   string
	PaidOrders int64
	PaidAmount float64
}

// GormDashboardRepository is the GORM implementation.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates the dashboard repository.
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview collects the overview aggregate.
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPaid).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPending).Count(&result.PendingOrders).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND status = ?", startAt, endAt, constants.OrderStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.RevenuePaid).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	subCount := func(status string, dest *int64) error {
		return r.db.Model(&models.Subscription{}).Where("status = ?", status).Count(dest).Error
	}
	if err := subCount(constants.SubscriptionStatusActive, &result.ActiveSubscriptions); err != nil {
		return result, err
	}
	if err := subCount(constants.SubscriptionStatusTrialing, &result.TrialingSubscriptions); err != nil {
		return result, err
	}
	if err := subCount(constants.SubscriptionStatusPastDue, &result.PastDueSubscriptions); err != nil {
		return result, err
	}

	commissionSum := func(status string, dest *float64) error {
		return r.db.Model(&models.Commission{}).
			Where("status = ?", status).
			Select("COALESCE(SUM(amount), 0)").
			Scan(dest).Error
	}
	if err := commissionSum(constants.CommissionStatusPending, &result.CommissionPending); err != nil {
		return result, err
	}
	if err := commissionSum(constants.CommissionStatusAvailable, &result.CommissionAvailable); err != nil {
		return result, err
	}

	withdrawalBase := func() *gorm.DB {
		return r.db.Model(&models.WithdrawalRequest{}).Where("status IN ?", openWithdrawalStatuses)
	}
	if err := withdrawalBase().Count(&result.OpenWithdrawals).Error; err != nil {
		return result, err
	}
	if err := withdrawalBase().
		Select("COALESCE(SUM(amount), 0)").
		Scan(&result.OpenWithdrawalAmount).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.DataRequest{}).
		Where("status IN ?", []string{constants.DataRequestStatusPending, constants.DataRequestStatusProcessing}).
		Count(&result.OpenDataRequests).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetRevenueTrends groups settled orders and signups per day.
func (r *GormDashboardRepository) GetRevenueTrends(startAt, endAt time.Time) ([]DashboardRevenueTrendRow, error) {
	type paidRow struct {
		Day     string
		Paid    int64
		Revenue float64
	}
	type userRow struct {
		Day   string
		Count int64
	}

	// date() works on both sqlite and postgres timestamps.
	paidDayExpr := "CAST(date(paid_at) AS TEXT)"
	var paids []paidRow
	if err := r.db.Model(&models.Order{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as paid, COALESCE(SUM(total_amount), 0) as revenue", paidDayExpr)).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND status = ?", startAt, endAt, constants.OrderStatusPaid).
		Group(paidDayExpr).
		Order("day asc").
		Scan(&paids).Error; err != nil {
		return nil, err
	}

	userDayExpr := "CAST(date(created_at) AS TEXT)"
	var users []userRow
	if err := r.db.Model(&models.User{}).
		Select(fmt.Sprintf("%s as day, COUNT(*) as count", userDayExpr)).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group(userDayExpr).
		Order("day asc").
		Scan(&users).Error; err != nil {
		return nil, err
	}

	userMap := make(map[string]int64, len(users))
	for _, item := range users {
		userMap[item.Day] = item.Count
	}

	rows := make(map[string]DashboardRevenueTrendRow, len(paids)+len(users))
	for _, item := range paids {
		rows[item.Day] = DashboardRevenueTrendRow{
			Day:        item.Day,
			OrdersPaid: item.Paid,
			Revenue:    item.Revenue,
			NewUsers:   userMap[item.Day],
		}
	}
	for _, item := range users {
		if _, ok := rows[item.Day]; !ok {
			rows[item.Day] = DashboardRevenueTrendRow{Day: item.Day, NewUsers: item.Count}
		}
	}

	result := make([]DashboardRevenueTrendRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, row)
	}
	return result, nil
}

// GetTopPlans ranks plans by settled sales in the window.
func (r *GormDashboardRepository) GetTopPlans(startAt, endAt time.Time, limit int) ([]DashboardPlanRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []DashboardPlanRankingRow
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.plan_id as plan_id, order_items.plan_name as plan_name, COUNT(DISTINCT orders.id) as paid_orders, COALESCE(SUM(orders.total_amount), 0) as paid_amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.paid_at IS NOT NULL AND orders.paid_at >= ? AND orders.paid_at < ? AND orders.status = ?", startAt, endAt, constants.OrderStatusPaid).
		Group("order_items.plan_id, order_items.plan_name").
		Order("paid_amount DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
