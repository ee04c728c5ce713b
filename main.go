package main

import (
	"github.com/stoneforge/bgen/cmd"
)

func main() {
	cmd.Execute()
}
