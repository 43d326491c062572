package main

import "github.com/custodia-labs/shopchat-core/internal/cli"

func main() {
	cli.Execute()
}
