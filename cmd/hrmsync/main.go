package main

import (
	"hrmsync/internal/client/cli"
	"hrmsync/internal/platform/config"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./cmd/hrmsync
var version = "dev"

func main() {
	config.LoadDotEnv()
	cli.Run(version)
}
