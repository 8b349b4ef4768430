package main

import "github.com/derickschaefer/pitwall/cmd"

func main() {
	cmd.Execute()
}
