package main

import "scene-publisher/cmd"

func main() {
	cmd.Execute()
}
