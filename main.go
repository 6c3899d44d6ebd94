// Package main is the entry point for the bookplay application.
package main

import (
	"github.com/bookplay-cli/bookplay/cmd"
	"github.com/bookplay-cli/bookplay/config"
	"github.com/bookplay-cli/bookplay/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
