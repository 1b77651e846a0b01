package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openarcade/lobby/internal/model"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "lobbyctl",
		Short: "CLI client for the game lobby server",
		Long: `lobbyctl talks the lobby's line-delimited JSON protocol over TCP.

It covers account registration, room operations, game browsing and
download for players, and catalog management for developers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.Server)
			if err != nil {
				return err
			}
			client = c
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if client != nil {
				_ = client.Close()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Server, "server", cfg.Server, "Server address (env: LOBBY_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (env: LOBBY_USER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "pass", "p", cfg.Password, "Password (env: LOBBY_PASS)")

	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newDevCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loginAs authenticates the connection's session with the configured
// credentials before a role-scoped command runs.
func loginAs(role model.Role) error {
	return client.Login(role, cfg.Username, cfg.Password)
}
