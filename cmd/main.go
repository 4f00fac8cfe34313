package main

import (
	"foxview.dev/cli/internal/interfaces/cli"
)

func main() {
	cli.Execute()
}
