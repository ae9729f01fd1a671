package main

import "github.com/andrescamacho/warera-economy-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
