//go:build cli
// +build cli

package main

import (
	_ "pricewatch.GO/custom"

	"pricewatch.GO/cmd"
	"pricewatch.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
