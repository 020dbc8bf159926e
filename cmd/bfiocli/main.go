package main

import (
	"github.com/robotalks/bfio.go/pkg/cli/sh"

	_ "github.com/robotalks/bfio.go/pkg/cli/cmds/bfio"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
