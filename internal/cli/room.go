package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomInfoCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomWaitCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomResetCmd())

	return cmd
}

func parseRoomID(arg string) (model.RoomID, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid room id %q", arg)
	}
	return model.RoomID(id), nil
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <game>",
		Short: "Create a room for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.CreateRoomResponse
			err := client.Call(protocol.RolePlayer, protocol.ActionCreateRoom,
				protocol.CreateRoomRequest{GameName: args[0]}, &resp)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("created room %d for %s", resp.RoomID, resp.GameName))
			return nil
		},
	}
}

func newRoomListCmd() *cobra.Command {
	var game string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RoomListResponse
			err := client.Call(protocol.RolePlayer, protocol.ActionListRooms,
				protocol.ListRoomsRequest{GameName: game}, &resp)
			if err != nil {
				return err
			}
			printRooms(resp.Rooms)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Filter by game name")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <room-id>",
		Short: "Join a waiting room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RoomIDResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionJoinRoom,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("joined room %d", resp.RoomID))
			return nil
		},
	}
}

func newRoomInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <room-id>",
		Short: "Show a room's state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RoomInfoResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionRoomInfo,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printRoom(resp.Room)
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <room-id>",
		Short: "Start the game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.StartGameResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionStartGame,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printStart(resp)
			return nil
		},
	}
}

func newRoomWaitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <room-id>",
		Short: "Mark yourself ready and block until the game starts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			fmt.Println("waiting for the host to start...")
			var resp protocol.StartGameResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionWaitStart,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printStart(resp)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <room-id>",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RoomIDResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionLeaveRoom,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printOK(resp.Message)
			return nil
		},
	}
}

func newRoomResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <room-id>",
		Short: "Return a played room to waiting (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			if err := loginAs(model.RolePlayer); err != nil {
				return err
			}
			var resp protocol.RoomIDResponse
			err = client.Call(protocol.RolePlayer, protocol.ActionResetRoom,
				protocol.RoomRequest{RoomID: id}, &resp)
			if err != nil {
				return err
			}
			printOK(fmt.Sprintf("room %d reset", resp.RoomID))
			return nil
		},
	}
}
