package main

import "github.com/conveydesk/convey-cli/cmd"

func main() {
	cmd.Execute()
}
