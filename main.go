package main

import "github.com/kasuboski/shokoz/cmd"

func main() {
	cmd.Execute()
}
