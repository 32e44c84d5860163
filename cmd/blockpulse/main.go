package main

import "github.com/mvp-joe/blockpulse/internal/cli"

func main() {
	cli.Execute()
}
