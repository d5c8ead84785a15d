package main

import (
	"github.com/perspectra/portal/internal/cli"
)

func main() {
	cli.Execute()
}
