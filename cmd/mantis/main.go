package main

import "mantis/internal/cli"

func main() {
	cli.Execute()
}
