package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/hr-assistant/cmd"
)

func main() {
	// Load .env if present; real environment variables still take precedence.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
