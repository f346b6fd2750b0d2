// Package seed provisions the rows a fresh deployment needs: a settings
// document and the operator account for the admin dashboard.
package seed

import (
	"context"
	"errors"
	"fmt"

	"pinnaclepm/internal/store"
	"pinnaclepm/pkg/types"
)

// SeedDefaultSettings writes the built-in settings document when the
// settings table is still empty. An existing document is left alone.
func SeedDefaultSettings(ctx context.Context, settingsRepo *store.SettingsRepository) error {
	_, err := settingsRepo.Settings(ctx)
	if err == nil {
		fmt.Println("Settings already present, skipping")
		return nil
	}
	if !errors.Is(err, types.ErrSettingsNotFound) {
		return fmt.Errorf("failed to check existing settings: %w", err)
	}

	if err := settingsRepo.SaveSettings(ctx, types.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	fmt.Println("Default settings seeded")
	return nil
}

// SeedAdminUser creates the operator account unless one already exists
// under the given email.
func SeedAdminUser(ctx context.Context, adminRepo *store.AdminRepository, email, password string) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	_, err := adminRepo.AdminByEmail(ctx, email)
	if err == nil {
		fmt.Printf("Admin user %s already exists, skipping\n", email)
		return nil
	}
	if !errors.Is(err, types.ErrAdminNotFound) {
		return fmt.Errorf("failed to check existing admin user: %w", err)
	}

	if _, err := adminRepo.CreateAdmin(ctx, email, password); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	fmt.Printf("Admin user %s created\n", email)
	return nil
}
