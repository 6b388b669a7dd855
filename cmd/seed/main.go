package main

import (
	"fmt"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/logger"
	"github.com/assinahub/assinahub/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	plans := []models.Plan{
		{
			Name:        "Essencial",
			Slug:        "essencial",
			Description: "Acesso aos recursos básicos da plataforma.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.90)),
			Interval:    "monthly",
			TrialDays:   7,
			IsActive:    true,
			SortOrder:   100,
		},
		{
			Name:        "Profissional",
			Slug:        "profissional",
			Description: "Recursos avançados para quem leva a sério.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(59.90)),
			Interval:    "monthly",
			TrialDays:   7,
			IsActive:    true,
			SortOrder:   200,
		},
		{
			Name:        "Profissional Anual",
			Slug:        "profissional-anual",
			Description: "Plano Profissional com desconto no pagamento anual.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(599.00)),
			Interval:    "yearly",
			TrialDays:   0,
			IsActive:    true,
			SortOrder:   300,
		},
		{
			Name:        "Legado",
			Slug:        "legado",
			Description: "Plano descontinuado, mantido para assinantes antigos.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(19.90)),
			Interval:    "monthly",
			TrialDays:   0,
			IsActive:    false,
			SortOrder:   900,
		},
	}

	for _, plan := range plans {
		var existing models.Plan
		if err := models.DB.Where("slug = ?", plan.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&plan).Error; err != nil {
				stdLog.Printf("Failed to create plan %s: %v", plan.Slug, err)
			} else {
				stdLog.Printf("Created plan: %s", plan.Slug)
			}
			continue
		}
		existing.Name = plan.Name
		existing.Description = plan.Description
		existing.Price = plan.Price
		existing.Interval = plan.Interval
		existing.TrialDays = plan.TrialDays
		existing.IsActive = plan.IsActive
		existing.SortOrder = plan.SortOrder
		if err := models.DB.Save(&existing).Error; err != nil {
			stdLog.Printf("Failed to update plan %s: %v", plan.Slug, err)
		} else {
			stdLog.Printf("Updated plan: %s", plan.Slug)
		}
	}

	now := time.Now()
	welcomeEnd := now.AddDate(0, 2, 0)
	flashStart := now.Add(-24 * time.Hour)
	flashEnd := now.AddDate(0, 0, 7)

	coupons := []models.Coupon{
		{
			Code:         "BEMVINDO10",
			Type:         "percent",
			Value:        models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MaxDiscount:  models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			PerUserLimit: 1,
			EndsAt:       &welcomeEnd,
			IsActive:     true,
		},
		{
			Code:       "RELAMPAGO20",
			Type:       "fixed",
			Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			MinAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			UsageLimit: 100,
			StartsAt:   &flashStart,
			EndsAt:     &flashEnd,
			IsActive:   true,
		},
	}

	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 4 Plans (3 active, 1 legacy)")
	fmt.Println("- 2 Coupons (welcome percent + flash fixed)")
}
