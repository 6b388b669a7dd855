package constants

// User status
const (
	UserStatusActive     = "active"
	UserStatusDisabled   = "disabled"
	UserStatusAnonymized = "anonymized"
)

// Plan billing interval
const (
	PlanIntervalMonthly = "monthly"
	PlanIntervalYearly  = "yearly"
)

// Subscription status
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Order status
const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusCanceled = "canceled"
	OrderStatusRefunded = "refunded"
)

// Commission status
const (
	CommissionStatusPending   = "PENDING"
	CommissionStatusAvailable = "AVAILABLE"
	CommissionStatusRequested = "REQUESTED"
	CommissionStatusPaid      = "PAID"
	CommissionStatusCanceled  = "CANCELED"
)

// Withdrawal request status
const (
	WithdrawalStatusPending    = "PENDING"
	WithdrawalStatusApproved   = "APPROVED"
	WithdrawalStatusProcessing = "PROCESSING"
	WithdrawalStatusPaid       = "PAID"
	WithdrawalStatusRejected   = "REJECTED"
	WithdrawalStatusCanceled   = "CANCELED"
)

// Withdrawal review actions
const (
	WithdrawalActionApprove = "approve"
	WithdrawalActionReject  = "reject"
	WithdrawalActionProcess = "process"
	WithdrawalActionPay     = "pay"
)

// Coupon type
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// LGPD data-subject request kinds
const (
	DataRequestKindAccess        = "ACCESS"
	DataRequestKindRectification = "RECTIFICATION"
	DataRequestKindErasure       = "ERASURE"
	DataRequestKindPortability   = "PORTABILITY"
)

// LGPD data-subject request status
const (
	DataRequestStatusPending    = "PENDING"
	DataRequestStatusProcessing = "PROCESSING"
	DataRequestStatusCompleted  = "COMPLETED"
	DataRequestStatusRejected   = "REJECTED"
)

// Erasure exclusion reasons
const (
	ErasureBlockedActiveSubscription = "active_subscription"
	ErasureBlockedPendingWithdrawal  = "pending_withdrawal"
	ErasureBlockedFiscalRetention    = "fiscal_retention"
)

// Anonymization sentinels
const (
	AnonymizedName     = "Usuário Anonimizado"
	AnonymizedEmailFmt = "anonimizado+%d@example.invalid"
)

// Consent kinds
const (
	ConsentKindTerms     = "terms"
	ConsentKindMarketing = "marketing"
)

// Audit actions
const (
	AuditActionUserRegistered       = "user.registered"
	AuditActionUserLogin            = "user.login"
	AuditActionOrderPaid            = "order.paid"
	AuditActionCommissionCreated    = "commission.created"
	AuditActionCommissionReleased   = "commission.released"
	AuditActionCommissionCanceled   = "commission.canceled"
	AuditActionWithdrawalRequested  = "withdrawal.requested"
	AuditActionWithdrawalReviewed   = "withdrawal.reviewed"
	AuditActionWithdrawalCanceled   = "withdrawal.canceled"
	AuditActionCouponRedeemed       = "coupon.redeemed"
	AuditActionDataRequestCreated   = "lgpd.request_created"
	AuditActionDataRequestReviewed  = "lgpd.request_reviewed"
	AuditActionUserAnonymized       = "lgpd.user_anonymized"
	AuditActionBackupCompleted      = "backup.completed"
	AuditActionSubscriptionRenewed  = "subscription.renewed"
	AuditActionSubscriptionCanceled = "subscription.canceled"
)

// Login failure reasons
const (
	LoginFailReasonBadRequest         = "bad_request"
	LoginFailReasonCaptchaRequired    = "captcha_required"
	LoginFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginFailReasonInvalidEmail       = "invalid_email"
	LoginFailReasonInvalidCredentials = "invalid_credentials"
	LoginFailReasonUserDisabled       = "user_disabled"
	LoginFailReasonInternalError      = "internal_error"
)

// Captcha providers
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// Captcha scenes
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// Queue task types
const (
	QueueDefault          = "default"
	TaskCommissionRelease = "commission:release"
	TaskDataRequestExport = "lgpd:export"
	TaskAuditWrite        = "audit:write"
	TaskBackupRun         = "backup:run"
)

// Cache defaults
const (
	RedisPrefixDefault = "ah"
)

// Referral codes: unambiguous alphabet, fixed length
const (
	ReferralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ReferralCodeLength   = 8
)

// Supported locales (Portuguese first, used as fallback order)
const (
	LocalePtBR = "pt-BR"
	LocaleEnUS = "en-US"
)

var SupportedLocales = []string{LocalePtBR, LocaleEnUS}

// Currency
const (
	SiteCurrencyDefault = "BRL"
)
