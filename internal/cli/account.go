package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountOnlineCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Username == "" || cfg.Password == "" {
				return fmt.Errorf("--user and --pass are required")
			}
			err := client.Call(protocol.RoleSystem, protocol.ActionRegister, protocol.RegisterRequest{
				Role:     model.Role(role),
				Username: cfg.Username,
				Password: cfg.Password,
			}, nil)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("registered %s as %s", cfg.Username, role))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RolePlayer), "Account role: player or developer")

	return cmd
}

func newAccountOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "List online users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.OnlineUsersResponse
			if err := client.Call(protocol.RolePlayer, protocol.ActionListOnlineUsers, nil, &resp); err != nil {
				return err
			}
			fmt.Printf("Players online (%d):\n", len(resp.Players))
			for _, p := range resp.Players {
				fmt.Printf("  %s\n", p)
			}
			fmt.Printf("Developers online (%d):\n", len(resp.Developers))
			for _, d := range resp.Developers {
				fmt.Printf("  %s\n", d)
			}
			return nil
		},
	}
}
