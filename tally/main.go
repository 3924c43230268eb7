package main

import "github.com/vouchrit/tally/tally/cmd"

func main() {
	cmd.Execute()
}
