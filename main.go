package main

import "github.com/plateful/plateful/cmd"

func main() {
	cmd.Execute()
}
