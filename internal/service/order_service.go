package service

import (
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService creates storefront orders and settles them. Payment
// settlement is the hub transaction of the platform: it flips the order,
// activates or renews the subscription and generates the referral
// commission, all under one row lock on the order.
type OrderService struct {
	cfg          *config.Config
	repo         repository.OrderRepository
	planRepo     repository.PlanRepository
	coupon       *CouponService
	subscription *SubscriptionService
	commission   *CommissionService
	audit        *AuditService
}

// NewOrderService creates the order service.
func NewOrderService(
	cfg *config.Config,
	repo repository.OrderRepository,
	planRepo repository.PlanRepository,
	coupon *CouponService,
	subscription *SubscriptionService,
	commission *CommissionService,
	audit *AuditService,
) *OrderService {
	return &OrderService{
		cfg:          cfg,
		repo:         repo,
		planRepo:     planRepo,
		coupon:       coupon,
		subscription: subscription,
		commission:   commission,
		audit:        audit,
	}
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	UserID     uint
	PlanID     uint
	CouponCode string
}

// CreateOrder opens a pending order for one plan cycle. When a coupon
// code is given it is redeemed inside the same transaction, so a failed
// limit check leaves no order behind.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	plan, err := s.planRepo.GetByID(input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	subtotal := plan.Price.Decimal.Round(2)
	couponCode := strings.TrimSpace(input.CouponCode)

	var created *models.Order
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		order := &models.Order{
			OrderNo:     generateOrderNo(),
			UserID:      input.UserID,
			Subtotal:    models.NewMoneyFromDecimal(subtotal),
			TotalAmount: models.NewMoneyFromDecimal(subtotal),
			Currency:    constants.SiteCurrencyDefault,
			Status:      constants.OrderStatusPending,
			Items: []models.OrderItem{{
				PlanID:    plan.ID,
				PlanName:  plan.Name,
				Interval:  plan.Interval,
				UnitPrice: plan.Price,
				Quantity:  1,
			}},
		}
		if err := repoTx.Create(order); err != nil {
			return err
		}

		if couponCode != "" {
			quote, err := s.coupon.RedeemTx(tx, couponCode, input.UserID, plan.ID, order.ID, subtotal)
			if err != nil {
				return err
			}
			order.CouponID = &quote.Coupon.ID
			order.DiscountAmount = quote.Discount
			order.TotalAmount = quote.FinalAmount
			if err := repoTx.Update(order); err != nil {
				return err
			}
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkOrderPaid settles a pending order. The row lock plus the pending
// status guard make settlement idempotent under concurrent payment
// callbacks; the second caller sees paid and gets ErrOrderAlreadyPaid.
func (s *OrderService) MarkOrderPaid(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	var settled *models.Order
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		order, err := repoTx.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		switch order.Status {
		case constants.OrderStatusPending:
		case constants.OrderStatusPaid:
			return ErrOrderAlreadyPaid
		default:
			return ErrOrderNotPending
		}

		var item models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).First(&item).Error; err != nil {
			return err
		}
		plan, err := s.planRepo.GetByID(item.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return ErrPlanNotFound
		}

		now := time.Now()
		order.Status = constants.OrderStatusPaid
		order.PaidAt = &now

		sub, err := s.subscription.ActivateForPaidOrderTx(tx, order.UserID, plan, now)
		if err != nil {
			return err
		}
		order.SubscriptionID = &sub.ID
		if err := repoTx.Update(order); err != nil {
			return err
		}

		if err := s.commission.HandleOrderPaidTx(tx, order); err != nil {
			return err
		}
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(AuditEntry{
		ActorType:  AuditActorUser,
		ActorID:    settled.UserID,
		Action:     constants.AuditActionOrderPaid,
		EntityType: "order",
		EntityID:   settled.ID,
		Metadata: map[string]interface{}{
			"order_no": settled.OrderNo,
			"total":    settled.TotalAmount.Decimal.StringFixed(2),
		},
	})
	return settled, nil
}

// CancelOrder voids a still-pending order. A redeemed coupon use is
// given back in the same transaction.
func (s *OrderService) CancelOrder(orderID, userID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	var canceled *models.Order
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)

		order, err := repoTx.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil || (userID != 0 && order.UserID != userID) {
			return ErrOrderNotFound
		}
		if order.Status != constants.OrderStatusPending {
			return ErrOrderNotPending
		}

		if order.CouponID != nil {
			if err := s.coupon.ReleaseTx(tx, *order.CouponID, order.UserID); err != nil {
				return err
			}
		}
		now := time.Now()
		order.Status = constants.OrderStatusCanceled
		order.CanceledAt = &now
		if err := repoTx.Update(order); err != nil {
			return err
		}
		canceled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}

// GetByID fetches one order, scoped to the owner when userID is set.
func (s *OrderService) GetByID(orderID, userID uint) (*models.Order, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || (userID != 0 && order.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNo fetches one order by its public number.
func (s *OrderService) GetByOrderNo(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.repo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil || (userID != 0 && order.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders lists the user's own orders.
func (s *OrderService) ListUserOrders(userID uint, page, pageSize int, status string) ([]models.Order, int64, error) {
	if userID == 0 {
		return []models.Order{}, 0, nil
	}
	return s.repo.List(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.ToLower(strings.TrimSpace(status)),
	})
}

// ListOrders queries orders for the backoffice.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.repo.List(filter)
}

// QuoteCoupon previews the discount a code would give on a plan.
func (s *OrderService) QuoteCoupon(userID, planID uint, code string) (*CouponQuote, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	return s.coupon.Validate(code, userID, plan.ID, plan.Price.Decimal.Round(2))
}

// generateOrderNo builds the public order number: a date block for
// operators plus a random block for uniqueness.
func generateOrderNo() string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return "AH" + time.Now().Format("20060102") + random
}
