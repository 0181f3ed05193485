package main

import "github.com/mfgops/swctl/cmd"

func main() {
	cmd.Execute()
}
