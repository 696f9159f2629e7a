package main

import "github.com/relloyd/sparkify-dwh/cmd"

func main() {
	cmd.Execute()
}
