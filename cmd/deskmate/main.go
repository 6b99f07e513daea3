package main

import "github.com/OpenDeskLab/DeskMate/cmd/deskmate/cmd"

func main() {
	cmd.Execute()
}
