package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ferndale-labs/marque/internal/adapters/driving/cli"
)

func main() {
	// Optional .env for API keys; absence is not an error.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
