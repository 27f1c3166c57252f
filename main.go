// Package main is the entry point for aether.
package main

import (
	"github.com/aether-player/aether/cmd"
	"github.com/aether-player/aether/config"
	"github.com/aether-player/aether/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
