package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/valutatrade/hub/cmd/valutahub/cmd"
)

func main() {
	// Secrets like EXCHANGERATE_API_KEY may live in a local .env file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
