package main

import "github.com/EventLink/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
