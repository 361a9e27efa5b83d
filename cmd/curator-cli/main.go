package main

import "github.com/MrSnakeDoc/curator/cmd/curator-cli/cmd"

func main() {
	cmd.Execute()
}
