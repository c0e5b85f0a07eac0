package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/talentscout/cmd"
)

func main() {
	// .env is optional, GEMINI_API_KEY may come from the environment.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
