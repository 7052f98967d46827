package main

import "github.com/bedrocksmith/bsmith/cmd"

func main() {
	cmd.Execute()
}
