package main

import "github.com/fulmenhq/noticegen/cmd"

func main() {
	cmd.Execute()
}
