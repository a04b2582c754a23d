package main

import "github.com/kamusis/axon-context/cmd"

func main() {
	cmd.Execute()
}
