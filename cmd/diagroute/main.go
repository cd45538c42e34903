package main

import "github.com/aalvaropc/diagroute/internal/cli"

func main() {
	cli.Execute()
}
