//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/propdesk/propdesk/internal/auth"
	"github.com/propdesk/propdesk/internal/database"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/pkg/config"
	"github.com/propdesk/propdesk/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, nil, logger)

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Admin"
	}

	resp, err := authService.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
	})

	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Admin user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create admin user: %v", err)
	}

	admin := resp.User
	if admin.CompanyID == nil {
		log.Fatalf("seed account %s did not resolve to an admin; use an admin@ address", email)
	}

	listing := models.Listing{
		UserID:      admin.ID,
		Title:       "Sample two-bedroom apartment",
		Description: "Seeded demo listing",
		Address:     "1 Demo Street",
		City:        "Springfield",
		PriceCents:  145000,
		Bedrooms:    2,
		Bathrooms:   1,
	}
	if err := db.Create(&listing).Error; err != nil {
		log.Fatalf("failed to seed listing: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", admin.Email)
	fmt.Printf("Company: %s\n", *admin.CompanyID)
	fmt.Printf("Token: %s\n", resp.Token)
}
