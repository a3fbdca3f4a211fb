package main

import "github.com/degaart/degaart.github.io/cmd"

func main() {
	cmd.Execute()
}
