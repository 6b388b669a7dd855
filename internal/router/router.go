package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/assinahub/assinahub/internal/authz"
	"github.com/assinahub/assinahub/internal/cache"
	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"
	adminhandlers "github.com/assinahub/assinahub/internal/http/handlers/admin"
	publichandlers "github.com/assinahub/assinahub/internal/http/handlers/public"
	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine and registers all routes.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Public storefront
		public := apiV1.Group("/public")
		{
			public.GET("/plans", publicHandler.GetPlans)
			public.GET("/plans/:slug", publicHandler.GetPlanBySlug)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// Account auth
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// Member API
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.POST("/me/token/refresh", publicHandler.RefreshToken)
			user.GET("/me/bank-account", publicHandler.GetMyBankAccount)
			user.PUT("/me/bank-account", publicHandler.UpsertMyBankAccount)
			user.GET("/me/consents", publicHandler.ListMyConsents)

			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			user.POST("/coupons/quote", publicHandler.QuoteCoupon)

			user.GET("/subscription", publicHandler.GetMySubscription)
			user.PUT("/subscription/cancel-at-period-end", publicHandler.SetCancelAtPeriodEnd)

			user.GET("/commissions/summary", publicHandler.GetCommissionSummary)
			user.GET("/commissions", publicHandler.ListMyCommissions)
			user.POST("/withdrawals", publicHandler.CreateWithdrawal)
			user.GET("/withdrawals", publicHandler.ListMyWithdrawals)
			user.GET("/withdrawals/:id", publicHandler.GetMyWithdrawal)
			user.POST("/withdrawals/:id/cancel", publicHandler.CancelMyWithdrawal)

			user.POST("/lgpd/requests", publicHandler.CreateDataRequest)
			user.GET("/lgpd/requests", publicHandler.ListMyDataRequests)
			user.GET("/lgpd/requests/:id", publicHandler.GetMyDataRequest)
		}

		// Backoffice
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
				authorized.GET("/dashboard/trends", adminHandler.GetDashboardTrends)

				authorized.GET("/plans", adminHandler.ListAdminPlans)
				authorized.GET("/plans/:id", adminHandler.GetAdminPlan)
				authorized.POST("/plans", adminHandler.CreatePlan)
				authorized.PUT("/plans/:id", adminHandler.UpdatePlan)
				authorized.DELETE("/plans/:id", adminHandler.DeletePlan)

				authorized.GET("/coupons", adminHandler.ListAdminCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetAdminCoupon)
				authorized.POST("/coupons", adminHandler.CreateCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

				authorized.GET("/users", adminHandler.ListAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PUT("/users/:id/status", adminHandler.SetUserStatus)

				authorized.GET("/orders", adminHandler.ListAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.POST("/orders/:id/mark-paid", adminHandler.MarkOrderPaid)
				authorized.POST("/orders/:id/cancel", adminHandler.CancelAdminOrder)

				authorized.GET("/subscriptions", adminHandler.ListAdminSubscriptions)
				authorized.POST("/subscriptions/:id/cancel", adminHandler.CancelAdminSubscription)

				authorized.GET("/commissions", adminHandler.ListAdminCommissions)
				authorized.POST("/commissions/:id/cancel", adminHandler.CancelAdminCommission)

				authorized.GET("/withdrawals", adminHandler.ListAdminWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetAdminWithdrawal)
				authorized.POST("/withdrawals/:id/review", adminHandler.ReviewAdminWithdrawal)

				authorized.GET("/lgpd/requests", adminHandler.ListAdminDataRequests)
				authorized.POST("/lgpd/requests/:id/approve", adminHandler.ApproveDataRequest)
				authorized.POST("/lgpd/requests/:id/reject", adminHandler.RejectDataRequest)

				authorized.GET("/audit-events", adminHandler.ListAuditEvents)
				authorized.POST("/backups", adminHandler.TriggerBackup)

				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog derives grantable permissions from the
// registered admin routes.
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
