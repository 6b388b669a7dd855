package service

import "errors"

// Sentinel business errors. Handlers map these to localized API
// responses; services never format user-facing text.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidPassword    = errors.New("invalid current password")
	ErrWeakPassword       = errors.New("password does not meet policy")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha configuration invalid")

	ErrReferralCodeInvalid = errors.New("referral code invalid")

	ErrPlanNotFound   = errors.New("plan not found")
	ErrPlanInvalid    = errors.New("plan data invalid")
	ErrPlanInactive   = errors.New("plan inactive")
	ErrPlanSlugExists = errors.New("plan slug already exists")
	ErrPlanInUse      = errors.New("plan has subscriptions")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order not awaiting payment")
	ErrOrderAlreadyPaid   = errors.New("order already paid")
	ErrSubscriptionNone   = errors.New("no subscription")
	ErrSubscriptionState  = errors.New("subscription state does not allow this")
	ErrSubscriptionExists = errors.New("subscription already open")

	ErrCouponInvalid       = errors.New("coupon invalid")
	ErrCouponExpired       = errors.New("coupon outside validity window")
	ErrCouponExhausted     = errors.New("coupon exhausted")
	ErrCouponPerUserLimit  = errors.New("coupon per-user limit reached")
	ErrCouponMinAmount     = errors.New("coupon minimum amount not met")
	ErrCouponNotApplicable = errors.New("coupon not applicable to plan")
	ErrCouponCodeExists    = errors.New("coupon code already exists")

	ErrCommissionNotFound = errors.New("commission not found")
	ErrCommissionState    = errors.New("commission state does not allow this")

	ErrWithdrawalBelowMinimum  = errors.New("withdrawal below minimum")
	ErrWithdrawalInsufficient  = errors.New("withdrawal exceeds available balance")
	ErrWithdrawalNoBankAccount = errors.New("withdrawal requires bank account")
	ErrWithdrawalAlreadyOpen   = errors.New("withdrawal already open")
	ErrWithdrawalNotFound      = errors.New("withdrawal not found")
	ErrWithdrawalState         = errors.New("withdrawal state does not allow this transition")
	ErrWithdrawalActionInvalid = errors.New("withdrawal review action invalid")

	ErrBankAccountInvalid = errors.New("bank account data invalid")

	ErrDataRequestOpen        = errors.New("open data request of this kind exists")
	ErrDataRequestNotFound    = errors.New("data request not found")
	ErrDataRequestState       = errors.New("data request state does not allow this")
	ErrDataRequestKindInvalid = errors.New("data request kind invalid")

	ErrErasureActiveSubscription = errors.New("erasure blocked by active subscription")
	ErrErasurePendingWithdrawal  = errors.New("erasure blocked by pending withdrawal")
	ErrErasureFiscalRetention    = errors.New("erasure blocked by fiscal retention")

	ErrStorageNotConfigured = errors.New("object storage not configured")
	ErrQueueUnavailable     = errors.New("task queue unavailable")

	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
)
