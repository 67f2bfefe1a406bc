package main

import "github.com/rustyeddy/tradeplatform/internal/cli"

func main() {
	cli.Execute()
}
