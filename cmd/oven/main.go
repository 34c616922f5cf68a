package main

import "github.com/nehonix-labs/oven/internal/cli"

func main() {
	cli.Execute()
}
