package provider

import (
	"github.com/assinahub/assinahub/internal/authz"
	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/models"
	"github.com/assinahub/assinahub/internal/queue"
	"github.com/assinahub/assinahub/internal/repository"
	"github.com/assinahub/assinahub/internal/service"
	"github.com/assinahub/assinahub/internal/storage"
)

// Container wires repositories and services once at boot.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       *storage.Store

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	PlanRepo         repository.PlanRepository
	SubscriptionRepo repository.SubscriptionRepository
	OrderRepo        repository.OrderRepository
	CouponRepo       repository.CouponRepository
	CouponUsageRepo  repository.CouponUsageRepository
	CommissionRepo   repository.CommissionRepository
	BankAccountRepo  repository.BankAccountRepository
	LGPDRepo         repository.LGPDRepository
	AuditRepo        repository.AuditRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CaptchaService      *service.CaptchaService
	AuditService        *service.AuditService
	UserService         *service.UserService
	PlanService         *service.PlanService
	CouponService       *service.CouponService
	SubscriptionService *service.SubscriptionService
	CommissionService   *service.CommissionService
	WithdrawalService   *service.WithdrawalService
	OrderService        *service.OrderService
	LGPDService         *service.LGPDService
	BackupService       *service.BackupService
	DashboardService    *service.DashboardService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       store,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.PlanRepo = repository.NewPlanRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.BankAccountRepo = repository.NewBankAccountRepository(db)
	c.LGPDRepo = repository.NewLGPDRepository(db)
	c.AuditRepo = repository.NewAuditRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuditService = service.NewAuditService(c.AuditRepo, c.QueueClient)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.LGPDRepo)
	c.UserService = service.NewUserService(c.UserRepo, c.BankAccountRepo, c.AuditService)
	c.PlanService = service.NewPlanService(c.PlanRepo, c.SubscriptionRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo, c.AuditService)
	c.SubscriptionService = service.NewSubscriptionService(c.Config, c.SubscriptionRepo, c.AuditService)
	c.CommissionService = service.NewCommissionService(c.Config, c.CommissionRepo, c.UserRepo, c.AuditService)
	c.WithdrawalService = service.NewWithdrawalService(c.Config, c.CommissionRepo, c.BankAccountRepo, c.CommissionService, c.AuditService)
	c.OrderService = service.NewOrderService(c.Config, c.OrderRepo, c.PlanRepo, c.CouponService, c.SubscriptionService, c.CommissionService, c.AuditService)
	c.LGPDService = service.NewLGPDService(c.Config, c.LGPDRepo, c.UserRepo, c.SubscriptionRepo, c.OrderRepo, c.CommissionRepo, c.BankAccountRepo, c.QueueClient, c.AuditService)
	c.BackupService = service.NewBackupService(c.Config, models.DB, c.Store, c.AuditService)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
