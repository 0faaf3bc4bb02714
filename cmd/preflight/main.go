package main

import (
	"os"

	"catalogsync/internal/config"
	"catalogsync/internal/preflight"
)

func main() {
	os.Exit(preflight.Run(os.Stdout, config.Options{}))
}
