package main

import "github.com/hupe1980/docload/cmd/docload/cmd"

func main() {
	cmd.Execute()
}
