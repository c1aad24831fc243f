package main

import "github.com/mcoot/hptracker/internal/cli"

func main() {
	cli.Execute()
}
