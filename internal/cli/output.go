package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	titleColor = color.New(color.Bold)
)

func printOK(msg string) {
	okColor.Println(msg)
}

func printGames(games model.GameTable) {
	if len(games) == 0 {
		warnColor.Println("no games available")
		return
	}
	names := make([]string, 0, len(games))
	for name := range games {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := games[name]
		titleColor.Printf("%s", name)
		fmt.Printf(" v%s by %s (%s, %d-%d players)\n",
			g.Version, g.Developer, g.Type, g.MinPlayers, g.MaxPlayers)
		if g.Description != "" {
			fmt.Printf("  %s\n", g.Description)
		}
	}
}

func printGameInfo(name string, g model.Game) {
	titleColor.Printf("%s\n", name)
	fmt.Printf("Version: %s\n", g.Version)
	fmt.Printf("Developer: %s\n", g.Developer)
	fmt.Printf("Type: %s\n", g.Type)
	fmt.Printf("Players: %d-%d\n", g.MinPlayers, g.MaxPlayers)
	if g.Description != "" {
		fmt.Printf("Description: %s\n", g.Description)
	}
}

func printRoom(r model.Room) {
	titleColor.Printf("Room %d\n", r.ID)
	fmt.Printf("Game: %s v%s\n", r.GameName, r.Version)
	fmt.Printf("Host: %s\n", r.Host)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Players (%d/%d): %s\n", len(r.Players), r.MaxPlayers, strings.Join(r.Players, ", "))
	if len(r.ReadyPlayers) > 0 {
		fmt.Printf("Ready: %s\n", strings.Join(r.ReadyPlayers, ", "))
	}
}

func printRooms(rooms []model.Room) {
	if len(rooms) == 0 {
		warnColor.Println("no open rooms")
		return
	}
	for _, r := range rooms {
		fmt.Printf("[%d] %s hosted by %s (%d/%d players)\n",
			r.ID, r.GameName, r.Host, len(r.Players), r.MaxPlayers)
	}
}

func printStart(resp protocol.StartGameResponse) {
	okColor.Printf("game started in room %d\n", resp.RoomID)
	fmt.Printf("Game: %s v%s\n", resp.GameName, resp.Version)
	fmt.Printf("Players: %s\n", strings.Join(resp.Players, ", "))
}

func printRatings(resp protocol.RatingsResponse) {
	titleColor.Printf("%s\n", resp.GameName)
	if resp.AvgScore == nil {
		warnColor.Println("no ratings yet")
		return
	}
	fmt.Printf("Average: %.2f (%d ratings)\n", *resp.AvgScore, resp.Count)
	for _, r := range resp.Ratings {
		fmt.Printf("  %d/5 by %s", r.Score, r.Player)
		if r.Comment != "" {
			fmt.Printf(": %s", r.Comment)
		}
		fmt.Println()
	}
}

func printHistory(history map[string]int) {
	if len(history) == 0 {
		warnColor.Println("no games played yet")
		return
	}
	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %d plays\n", name, history[name])
	}
}
