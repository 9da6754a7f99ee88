package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/observability"
	"github.com/spec-kit/report-service/internal/persistence"
	"github.com/spec-kit/report-service/internal/repository"
)

func main() {
	dir := flag.String("dir", "migrations", "directory containing SQL migrations")
	seedAdmin := flag.Bool("seed-admin", false, "create an admin account from ADMIN_EMAIL/ADMIN_USERNAME/ADMIN_PASSWORD")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), *dir, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	if *seedAdmin {
		if pg.PoolHandle() == nil {
			logger.Fatal("POSTGRES_DSN must be set to seed an admin account")
		}
		if err := seedAdminAccount(ctx, repository.NewUserRepository(pg.PoolHandle()), cfg.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("admin seeding failed", zap.Error(err))
		}
	}
}

// seedAdminAccount provisions an admin from environment variables. It is a
// no-op when an account with the same email already exists.
func seedAdminAccount(ctx context.Context, users repository.UserRepository, bcryptCost int, logger *zap.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || username == "" || password == "" {
		return errors.New("ADMIN_EMAIL, ADMIN_USERNAME and ADMIN_PASSWORD must be set")
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		logger.Info("admin account already exists", zap.String("email", email))
		return nil
	}

	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("admin account created", zap.Int64("user_id", admin.ID), zap.String("email", email))
	return nil
}
