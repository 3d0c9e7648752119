package main

import "bookex/cmd/cli/command"

func main() {
	command.Execute()
}
