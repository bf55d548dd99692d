package main

import "github.com/ingham-physics/auscat-util/cmd"

func main() {
	cmd.Execute()
}
