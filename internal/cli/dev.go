package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Developer catalog commands",
	}

	cmd.AddCommand(newDevUploadCmd(protocol.ActionUploadGame))
	cmd.AddCommand(newDevUploadCmd(protocol.ActionUpdateGame))
	cmd.AddCommand(newDevDeleteCmd())
	cmd.AddCommand(newDevListCmd())

	return cmd
}

// newDevUploadCmd builds both the upload and update commands; they share the
// two-phase exchange and differ only in the action name.
func newDevUploadCmd(action protocol.Action) *cobra.Command {
	var (
		file        string
		version     string
		description string
		gameType    string
		minPlayers  int
		maxPlayers  int
	)

	use, short := "upload <game>", "Publish a new game"
	if action == protocol.ActionUpdateGame {
		use, short = "update <game>", "Update one of your games"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RoleDeveloper); err != nil {
				return err
			}
			resp, err := client.Upload(action, protocol.UploadRequest{
				GameName:    args[0],
				Version:     version,
				Description: description,
				Type:        model.GameType(gameType),
				MinPlayers:  minPlayers,
				MaxPlayers:  maxPlayers,
			}, file)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("%s v%s published", resp.GameName, resp.Version))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Game archive (zip) to upload (required)")
	cmd.Flags().StringVar(&version, "version", "", "Game version (required)")
	cmd.Flags().StringVar(&description, "desc", "", "Game description")
	cmd.Flags().StringVar(&gameType, "type", string(model.GameTypeCLI), "Game type: CLI or GUI")
	cmd.Flags().IntVar(&minPlayers, "min-players", 0, "Minimum players (default 2)")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Maximum players (default: min)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func newDevDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game>",
		Short: "Remove one of your games from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RoleDeveloper); err != nil {
				return err
			}
			err := client.Call(protocol.RoleDeveloper, protocol.ActionDeleteGame,
				protocol.GameRequest{GameName: args[0]}, nil)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("deleted %s", args[0]))
			return nil
		},
	}
}

func newDevListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your published games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RoleDeveloper); err != nil {
				return err
			}
			var resp protocol.GameListResponse
			if err := client.Call(protocol.RoleDeveloper, protocol.ActionListMyGames, nil, &resp); err != nil {
				return err
			}
			printGames(resp.Games)
			return nil
		},
	}
}
