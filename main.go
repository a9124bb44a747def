package main

import "github.com/weftnet/spindle/cmd"

func main() {
	cmd.Execute()
}
