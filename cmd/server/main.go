package main

import "github.com/castlemilk/savetrack/internal/cli"

func main() {
	cli.Execute()
}
