package main

import "github.com/deutron/deutron/cmd"

func main() {
	cmd.Execute()
}
