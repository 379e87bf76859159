package cmd

import (
	"context"
	"fmt"

	"wagerhub/application"
	"wagerhub/config"
	"wagerhub/database"
	"wagerhub/domain/entities"
	"wagerhub/domain/services"
	"wagerhub/infrastructure"

	log "github.com/sirupsen/logrus"
)

// CreateAdmin registers an account and grants it the admin role. Events are
// dropped since no handlers run outside the server.
func CreateAdmin(ctx context.Context, name, email, password string) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.PoolConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	runner := application.NewServiceRunner(uowFactory, services.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), nil)

	var admin *entities.User
	err = runner.Run(ctx, func(s *application.Services) error {
		result, err := s.Auth.Register(ctx, name, email, password)
		if err != nil {
			return err
		}
		admin, err = s.Auth.ChangeRole(ctx, result.User.ID, entities.RoleAdmin)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": admin.ID,
		"email":   admin.Email,
	}).Info("Admin account created")
	return nil
}
