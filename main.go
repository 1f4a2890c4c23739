package main

import "github.com/fakturo/fakturo/cmd"

func main() {
	cmd.Execute()
}
