package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Game catalog commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesInfoCmd())
	cmd.AddCommand(newGamesDownloadCmd())
	cmd.AddCommand(newGamesRatingsCmd())
	cmd.AddCommand(newGamesRateCmd())
	cmd.AddCommand(newGamesHistoryCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all published games",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.GameListResponse
			if err := client.Call(protocol.RolePlayer, protocol.ActionListGames, nil, &resp); err != nil {
				return err
			}
			printGames(resp.Games)
			return nil
		},
	}
}

func newGamesInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <game>",
		Short: "Show one game's catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.GameInfoResponse
			err := client.Call(protocol.RolePlayer, protocol.ActionGameInfo,
				protocol.GameRequest{GameName: args[0]}, &resp)
			if err != nil {
				return err
			}
			printGameInfo(resp.GameName, resp.Info)
			return nil
		},
	}
}

func newGamesDownloadCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download <game>",
		Short: "Download a game's archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = args[0] + ".zip"
			}
			resp, err := client.Download(args[0], dest)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("downloaded %s v%s (%d bytes) to %s",
				resp.GameName, resp.Version, resp.ArchiveSize, dest))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Destination file (default: <game>.zip)")

	return cmd
}

func newGamesRatingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratings <game>",
		Short: "Show a game's ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RatingsResponse
			err := client.Call(protocol.RolePlayer, protocol.ActionGetGameRatings,
				protocol.GameRequest{GameName: args[0]}, &resp)
			if err != nil {
				return err
			}
			printRatings(resp)
			return nil
		},
	}
}

func newGamesRateCmd() *cobra.Command {
	var score int
	var comment string

	cmd := &cobra.Command{
		Use:   "rate <game>",
		Short: "Rate a game you have played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			err := client.Call(protocol.RolePlayer, protocol.ActionAddRating, protocol.AddRatingRequest{
				GameName: args[0],
				Score:    score,
				Comment:  comment,
			}, nil)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("rated %s %d/5", args[0], score))
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Score from 1 to 5 (required)")
	cmd.Flags().StringVar(&comment, "comment", "", "Optional comment")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newGamesHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your play history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.HistoryResponse
			if err := client.Call(protocol.RolePlayer, protocol.ActionMyHistory, nil, &resp); err != nil {
				return err
			}
			printHistory(resp.History)
			return nil
		},
	}
}
