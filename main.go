package main

import "CVForgeBot/cmd"

func main() {
	cmd.Execute()
}
