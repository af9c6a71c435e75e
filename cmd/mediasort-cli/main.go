package main

import "mediasort/cmd/mediasort-cli/cmd"

func main() {
	cmd.Execute()
}
