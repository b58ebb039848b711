package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/store/postgres"
)

func newTenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage restaurant accounts",
	}
	cmd.AddCommand(newTenantCreateCmd())
	return cmd
}

// newTenantCreateCmd bootstraps a restaurant together with its first admin,
// which is how the first platform admin comes to exist.
func newTenantCreateCmd() *cobra.Command {
	var name, slug, adminEmail, adminPassword, adminName string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a restaurant account and its first admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(adminPassword) < 8 {
				return errors.New("--admin-password must be at least 8 characters")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked in loadConfig
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(false); err != nil {
				return err
			}

			now := time.Now()
			t := &domain.Tenant{
				ID:        uuid.New(),
				Name:      name,
				Slug:      slug,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.Tenants().Create(ctx, t); err != nil {
				return fmt.Errorf("create tenant %q: %w", slug, err)
			}

			authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
			admin, err := authSvc.CreateUser(ctx, t.ID, adminEmail, adminPassword, adminName, domain.RoleAdmin)
			if err != nil {
				return fmt.Errorf("create admin for %q: %w", slug, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created tenant %s (%s) with admin %s\n", t.Slug, t.ID, admin.Email)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "restaurant name")
	c.Flags().StringVar(&slug, "slug", "", "public URL slug")
	c.Flags().StringVar(&adminEmail, "admin-email", "", "first admin email")
	c.Flags().StringVar(&adminPassword, "admin-password", "", "first admin password")
	c.Flags().StringVar(&adminName, "admin-name", "", "first admin display name")
	for _, f := range []string{"name", "slug", "admin-email", "admin-password"} {
		_ = c.MarkFlagRequired(f)
	}
	return c
}
