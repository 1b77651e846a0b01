package main

import "github.com/openarcade/lobby/internal/cli"

func main() {
	cli.Execute()
}
