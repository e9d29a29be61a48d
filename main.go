package main

import "copymanga/cmd"

func main() {
	cmd.Execute()
}
