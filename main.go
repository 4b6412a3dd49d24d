package main

import "github.com/mabhi256/jalias/cmd"

func main() {
	cmd.Execute()
}
