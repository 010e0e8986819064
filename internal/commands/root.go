// Package commands implements the taskflowctl operator CLI.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskflow/internal/config"
	"github.com/yukikurage/taskflow/internal/database"
	applog "github.com/yukikurage/taskflow/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "taskflowctl",
	Short: "Operator tool for the TaskFlow API",
	Long: `taskflowctl runs maintenance tasks against the TaskFlow database:
schema migrations, manager invite codes and dashboard reports.`,
	SilenceUsage: true,
}

// connect loads the configuration and opens the database.
func connect() (*config.Config, error) {
	cfg := config.Load()
	if err := applog.Init(cfg.GinMode, cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withDB opens the database before fn and closes it afterwards.
func withDB(fn func(*cobra.Command, []string, *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := connect()
		if err != nil {
			return err
		}
		defer func() {
			_ = database.Close()
			applog.Sync()
		}()
		return fn(cmd, args, cfg)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(inviteCodeCmd)
	rootCmd.AddCommand(newDashboardCmd())
}
