package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskflow/internal/config"
	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/utils"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: withDB(func(cmd *cobra.Command, _ []string, cfg *config.Config) error {
		if err := database.Migrate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", cfg.DBDriver)
		return nil
	}),
}

var inviteCodeCmd = &cobra.Command{
	Use:   "invite-code",
	Short: "Print a new random manager invite code",
	Long: `Prints a random code suitable for MANAGER_INVITE_CODE. Users who enter it
as their manager name at signup are registered as managers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), code)
		return nil
	},
}
