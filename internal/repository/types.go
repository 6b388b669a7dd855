package repository

import "time"

// UserListFilter filters the admin user listing.
type UserListFilter struct {
	Page         int
	PageSize     int
	Keyword      string
	Status       string
	ReferredByID uint
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// PlanListFilter filters the plan listing.
type PlanListFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	OnlyActive bool
}

// SubscriptionListFilter filters the subscription listing.
type SubscriptionListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	PlanID   uint
	Status   string
}

// OrderListFilter filters the order listing.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CommissionListFilter filters the commission listing.
type CommissionListFilter struct {
	Page         int
	PageSize     int
	EarnerUserID uint
	SourceUserID uint
	OrderID      uint
	Status       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// WithdrawalListFilter filters the withdrawal request listing.
type WithdrawalListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DataRequestListFilter filters the LGPD request listing.
type DataRequestListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Kind     string
	Status   string
}

// AuditEventListFilter filters the audit event listing.
type AuditEventListFilter struct {
	Page        int
	PageSize    int
	ActorType   string
	ActorID     uint
	Action      string
	EntityType  string
	EntityID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
