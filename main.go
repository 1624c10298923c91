package main

import (
	"github.com/dyike/quantdesk/internal/cli"
)

func main() {
	cli.Run()
}
