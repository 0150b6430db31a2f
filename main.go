package main

import "github.com/provebench/leanc/cmd"

func main() {
	cmd.Execute()
}
