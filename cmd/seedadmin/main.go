// Command seedadmin creates the admin account from configuration if no
// account with that email exists, and exits. Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/repositories"
	"github.com/avgordeev/user-portal/internal/services"
	"github.com/avgordeev/user-portal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	configPath := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()

	if err := run(context.Background(), *configPath); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	_ = godotenv.Load(configPath)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	if err := logger.Initialize(getEnv("APP_LOG_LEVEL", "info")); err != nil {
		return err
	}
	defer logger.Sync()

	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		return err
	}
	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(services.DefaultBcryptCost)))
	if err != nil {
		return err
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		getEnv("POSTGRES_USER", "user"),
		getEnv("POSTGRES_PASSWORD", "password"),
		getEnv("POSTGRES_HOST", "localhost"),
		pgPort,
		getEnv("POSTGRES_DB", "users"),
	)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()

	if err := migrations.Migrate(db.DB); err != nil {
		return err
	}

	seed := services.NewSeedService(
		repositories.NewUserReadRepository(db),
		repositories.NewUserWriteRepository(db),
		bcryptCost,
	)

	email := getEnv("ADMIN_EMAIL", "admin@example.com")
	created, err := seed.EnsureAdmin(ctx,
		getEnv("ADMIN_NAME", "Admin"),
		email,
		getEnv("ADMIN_PASSWORD", "Admin@123"),
	)
	if err != nil {
		return err
	}

	if created {
		logger.Log.Infof("Admin user created: %s", email)
	} else {
		logger.Log.Infof("Admin already exists: %s", email)
	}
	return nil
}
