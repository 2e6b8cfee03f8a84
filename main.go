package main

import "github.com/darisbot/daris-cli/cmd"

func main() {
	cmd.Execute()
}
