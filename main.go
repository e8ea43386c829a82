package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load .env from the working directory if present. Missing files are
	// fine; developers use this for GOOGLE_MAPS_API_KEY and server overrides.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}
