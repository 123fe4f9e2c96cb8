package main

import "github.com/pfrederiksen/agedcare-docs/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
