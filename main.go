package main

import "github.com/apollo67/dash/cmd"

var version = "0.1.0"

func main() {
	cmd.Version = version
	cmd.Execute()
}
