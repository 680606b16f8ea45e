package main

import "github.com/corbelhq/corbel/cmd/corbel/cmd"

func main() {
	cmd.Execute()
}
