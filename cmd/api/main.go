package main

import "github.com/SergeiKhy/utm-tracker/internal/cli"

func main() {
	cli.Execute()
}
