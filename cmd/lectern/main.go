package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lectern-labs/lectern/internal/adapters/driving/cli"
)

func main() {
	// API keys may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
