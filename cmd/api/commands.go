package main

import (
	"fmt"

	"maintenance-tracker-api/internal/app"
	"maintenance-tracker-api/internal/config"
	"maintenance-tracker-api/internal/database"
	"maintenance-tracker-api/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Provider != config.ProviderPostgres {
			return fmt.Errorf("migrate requires STORE_PROVIDER=%s", config.ProviderPostgres)
		}

		db, err := database.InitDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.Migrate(cmd.Context(), db, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled sample inventory",
	Long: `Inserts the embedded sample equipment, peripherals, tickets and
maintenance records. Records that already exist are skipped, so the command
can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// OpenStore seeds on its own when STORE_SEED is set
		cfg.Store.Seed = false
		store, _, err := app.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := seed.Load(cmd.Context(), store, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, skipped %d\n", result.Inserted, result.Skipped)
		return nil
	},
}

var notifyOverdueCmd = &cobra.Command{
	Use:   "notify-overdue",
	Short: "Send one notification per asset with overdue maintenance",
	Long: `Scans equipment and peripherals for overdue maintenance and sends a
warning to the notification webhook for each. Suitable for cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NotificationService.URL == "" {
			logger.Warn("NOTIFIER_URL is not set, overdue notifications will be discarded")
		}

		cfg.AI.Enabled = false
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		sent, err := a.Maintenance.NotifyOverdue(cmd.Context())
		logger.Info("overdue scan finished", zap.Int("sent", sent))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d overdue notification(s)\n", sent)
		return nil
	},
}
