package main

import "github.com/modtools/tubeguard/internal/cli"

func main() {
	cli.Execute()
}
